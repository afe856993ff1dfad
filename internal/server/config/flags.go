package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

var valueFlags = []string{
	"-a", "-d", "-s", "-k", "-t", "-r", "-m",
	"-u", "-p", "-b", "-g", "-e",
	"-redis-addr", "-redis-password", "-redis-db",
	"-env", "-cookie-domain", "-bcrypt-cost", "-login-rate", "-otlp", "-log-level",
}

var boolFlags = []string{"-secure-cookies", "-revoke-on-password-change"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-d string   PostgreSQL DSN
//	-s string   access token HMAC secret
//	-k string   refresh token HMAC secret
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-m string   session backend: postgres, redis or memory
//	-u/-p/-b/-g/-e  S3 user, password, bucket, region, base endpoint
//	-redis-addr, -redis-password, -redis-db
//	-env, -secure-cookies, -cookie-domain
//	-revoke-on-password-change
//	-bcrypt-cost, -login-rate (requests per minute per IP), -otlp, -log-level
//
// Duration flags are integers in minutes, as in the JSON-less deployments the
// service started with.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], valueFlags, boolFlags...)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AccessTokenSecret, "s", config.AccessTokenSecret, "access token secret")
	fs.StringVar(&config.RefreshTokenSecret, "k", config.RefreshTokenSecret, "refresh token secret")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.SessionBackend, "m", config.SessionBackend, "session backend (postgres, redis, memory)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.RedisAddr, "redis-addr", config.RedisAddr, "redis address")
	fs.StringVar(&config.RedisPassword, "redis-password", config.RedisPassword, "redis password")
	fs.IntVar(&config.RedisDB, "redis-db", config.RedisDB, "redis database number")

	fs.StringVar(&config.Environment, "env", config.Environment, "environment name")
	fs.BoolVar(&config.SecureCookies, "secure-cookies", config.SecureCookies, "set Secure on token cookies")
	fs.StringVar(&config.CookieDomain, "cookie-domain", config.CookieDomain, "token cookie domain")
	fs.BoolVar(&config.RevokeSessionsOnPasswordChange, "revoke-on-password-change", config.RevokeSessionsOnPasswordChange, "clear refresh token on password change")
	fs.IntVar(&config.BcryptCost, "bcrypt-cost", config.BcryptCost, "bcrypt cost")
	fs.IntVar(&config.LoginRateLimit, "login-rate", config.LoginRateLimit, "login/refresh requests per minute per IP (0 disables)")
	fs.StringVar(&config.OTLPEndpoint, "otlp", config.OTLPEndpoint, "OTLP HTTP endpoint for traces")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
}
