package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP               string         `json:"endpoint_addr_http"`
	DatabaseDSN                    string         `json:"database_dsn"`
	AccessTokenSecret              string         `json:"access_token_secret"`
	RefreshTokenSecret             string         `json:"refresh_token_secret"`
	AccessTokenValidityDuration    timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration   timex.Duration `json:"refresh_token_validity_duration"`
	SessionBackend                 string         `json:"session_backend"`
	RedisAddr                      string         `json:"redis_addr"`
	RedisPassword                  string         `json:"redis_password"`
	RedisDB                        int            `json:"redis_db"`
	S3RootUser                     string         `json:"s3_root_user"`
	S3RootPassword                 string         `json:"s3_root_password"`
	S3Bucket                       string         `json:"s3_bucket"`
	S3Region                       string         `json:"s3_region"`
	S3BaseEndpoint                 string         `json:"s3_base_endpoint"`
	Environment                    string         `json:"environment"`
	SecureCookies                  bool           `json:"secure_cookies"`
	CookieDomain                   string         `json:"cookie_domain"`
	RevokeSessionsOnPasswordChange bool           `json:"revoke_sessions_on_password_change"`
	BcryptCost                     int            `json:"bcrypt_cost"`
	LoginRateLimit                 int            `json:"login_rate_limit"`
	OTLPEndpoint                   string         `json:"otlp_endpoint"`
	LogLevel                       string         `json:"log_level"`
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrHTTP:               c.EndpointAddrHTTP,
		DatabaseDSN:                    c.DatabaseDSN,
		AccessTokenSecret:              c.AccessTokenSecret,
		RefreshTokenSecret:             c.RefreshTokenSecret,
		AccessTokenValidityDuration:    timex.Duration{Duration: c.AccessTokenValidityDuration},
		RefreshTokenValidityDuration:   timex.Duration{Duration: c.RefreshTokenValidityDuration},
		SessionBackend:                 c.SessionBackend,
		RedisAddr:                      c.RedisAddr,
		RedisPassword:                  c.RedisPassword,
		RedisDB:                        c.RedisDB,
		S3RootUser:                     c.S3RootUser,
		S3RootPassword:                 c.S3RootPassword,
		S3Bucket:                       c.S3Bucket,
		S3Region:                       c.S3Region,
		S3BaseEndpoint:                 c.S3BaseEndpoint,
		Environment:                    c.Environment,
		SecureCookies:                  c.SecureCookies,
		CookieDomain:                   c.CookieDomain,
		RevokeSessionsOnPasswordChange: c.RevokeSessionsOnPasswordChange,
		BcryptCost:                     c.BcryptCost,
		LoginRateLimit:                 c.LoginRateLimit,
		OTLPEndpoint:                   c.OTLPEndpoint,
		LogLevel:                       c.LogLevel,
	}
}

// parseJson overlays the JSON file given with -c/-config onto config.
// Keys missing from the file keep their current value. An unreadable file or
// invalid JSON panics: the server must not start on a half-read config.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.AccessTokenSecret = c.AccessTokenSecret
	config.RefreshTokenSecret = c.RefreshTokenSecret
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	config.SessionBackend = c.SessionBackend
	config.RedisAddr = c.RedisAddr
	config.RedisPassword = c.RedisPassword
	config.RedisDB = c.RedisDB
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.Environment = c.Environment
	config.SecureCookies = c.SecureCookies
	config.CookieDomain = c.CookieDomain
	config.RevokeSessionsOnPasswordChange = c.RevokeSessionsOnPasswordChange
	config.BcryptCost = c.BcryptCost
	config.LoginRateLimit = c.LoginRateLimit
	config.OTLPEndpoint = c.OTLPEndpoint
	config.LogLevel = c.LogLevel
}
