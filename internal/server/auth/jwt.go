// Package auth issues and verifies the access and refresh JWTs.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token kinds, stored in the "typ" claim so a token signed for one purpose
// is never accepted for the other even if both secrets are equal.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

var (
	errEmptySecret = errors.New("signing secret is empty")
	errInvalidTTL  = errors.New("token validity must be positive")
)

// Claims carries the user id and the token kind on top of the registered
// claims. Every token gets a random jti, so two tokens issued for the same
// user within one second still differ.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"_id"`
	Kind   string `json:"typ"`
}

// Config is the process-wide signing configuration.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Issuer signs and verifies tokens. It holds no mutable state.
type Issuer struct {
	cfg Config
	now func() time.Time
}

func NewIssuer(cfg Config) *Issuer {
	return &Issuer{cfg: cfg, now: time.Now}
}

// WithClock returns a copy of the issuer that reads time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	return &Issuer{cfg: i.cfg, now: now}
}

func (i *Issuer) IssueAccessToken(userID string) (string, error) {
	return i.issue(userID, KindAccess, i.cfg.AccessSecret, i.cfg.AccessTTL)
}

func (i *Issuer) IssueRefreshToken(userID string) (string, error) {
	return i.issue(userID, KindRefresh, i.cfg.RefreshSecret, i.cfg.RefreshTTL)
}

// ParseAccessToken returns the user id of a valid access token.
func (i *Issuer) ParseAccessToken(token string) (string, error) {
	return i.parse(token, KindAccess, i.cfg.AccessSecret)
}

// ParseRefreshToken returns the user id of a valid refresh token.
func (i *Issuer) ParseRefreshToken(token string) (string, error) {
	return i.parse(token, KindRefresh, i.cfg.RefreshSecret)
}

// issue failures are configuration problems and come back as InternalError.
func (i *Issuer) issue(userID, kind string, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", common.Internal("token signing is not configured", errEmptySecret)
	}
	if ttl <= 0 {
		return "", common.Internal("token signing is not configured", errInvalidTTL)
	}

	token, err := GenerateToken(userID, kind, secret, i.now(), ttl)
	if err != nil {
		return "", common.Internal("token signing failed", err)
	}
	return token, nil
}

func (i *Issuer) parse(token, kind string, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", common.Internal("token verification is not configured", errEmptySecret)
	}
	claims, err := ParseToken(token, secret, i.now)
	if err != nil {
		return "", err
	}
	if claims.Kind != kind {
		return "", fmt.Errorf("%w: expected %s token", common.ErrInvalidToken, kind)
	}
	return claims.UserID, nil
}

// GenerateToken signs an HS256 token for userID valid for ttl from now.
func GenerateToken(userID, kind string, secretKey []byte, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Kind:   kind,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies signature and expiry. Expired tokens yield
// common.ErrTokenExpired, everything else wraps common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte, now func() time.Time) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
