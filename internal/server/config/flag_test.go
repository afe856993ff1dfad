package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-d", "db", "-s", "access", "-k", "refresh",
				"-t", "5", "-r", "60", "-m", "redis",
				"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
				"-redis-addr", "redis:6379", "-redis-password", "pw", "-redis-db", "2",
				"-env", "production", "-secure-cookies", "-cookie-domain", "example.com",
				"-revoke-on-password-change", "-bcrypt-cost", "12", "-login-rate", "5",
				"-otlp", "otel:4318", "-log-level", "debug",
			},
			expected: &Config{
				EndpointAddrHTTP:               "127.0.0.1:9090",
				DatabaseDSN:                    "db",
				AccessTokenSecret:              "access",
				RefreshTokenSecret:             "refresh",
				AccessTokenValidityDuration:    5 * time.Minute,
				RefreshTokenValidityDuration:   time.Hour,
				SessionBackend:                 "redis",
				RedisAddr:                      "redis:6379",
				RedisPassword:                  "pw",
				RedisDB:                        2,
				S3RootUser:                     "user",
				S3RootPassword:                 "password",
				S3Bucket:                       "bucket",
				S3Region:                       "us-west-1",
				S3BaseEndpoint:                 "http://endpoint",
				Environment:                    "production",
				SecureCookies:                  true,
				CookieDomain:                   "example.com",
				RevokeSessionsOnPasswordChange: true,
				BcryptCost:                     12,
				LoginRateLimit:                 5,
				OTLPEndpoint:                   "otel:4318",
				LogLevel:                       "debug",
			},
		},
		{
			name:        "non-numeric minutes",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Equal(t, tt.expected, config)
		})
	}
}

func TestParseFlags_IgnoresForeignFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"cmd", "-test.v", "-x", "1", "-a", ":7000"}

	var c Config
	c.LoadDefaults()
	require.NotPanics(t, func() { parseFlags(&c) })
	assert.Equal(t, ":7000", c.EndpointAddrHTTP)
	assert.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
}
