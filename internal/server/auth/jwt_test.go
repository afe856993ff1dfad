package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer() *Issuer {
	return NewIssuer(Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    240 * time.Hour,
	})
}

func TestIssueAndParse_Access(t *testing.T) {
	t.Parallel()
	i := newTestIssuer()

	tok, err := i.IssueAccessToken("user-123")
	require.NoError(t, err)

	userID, err := i.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestIssueAndParse_Refresh(t *testing.T) {
	t.Parallel()
	i := newTestIssuer()

	tok, err := i.IssueRefreshToken("user-123")
	require.NoError(t, err)

	userID, err := i.ParseRefreshToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestIssue_SameSecondTokensDiffer(t *testing.T) {
	t.Parallel()
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	i := newTestIssuer().WithClock(func() time.Time { return fixed })

	a, err := i.IssueRefreshToken("u1")
	require.NoError(t, err)
	b, err := i.IssueRefreshToken("u1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestIssue_ExpiryDiffersPerKind(t *testing.T) {
	t.Parallel()
	i := newTestIssuer()

	access, err := i.IssueAccessToken("u1")
	require.NoError(t, err)
	refresh, err := i.IssueRefreshToken("u1")
	require.NoError(t, err)

	ac, err := ParseToken(access, []byte("access-secret"), time.Now)
	require.NoError(t, err)
	rc, err := ParseToken(refresh, []byte("refresh-secret"), time.Now)
	require.NoError(t, err)

	assert.WithinDuration(t, ac.IssuedAt.Add(15*time.Minute), ac.ExpiresAt.Time, time.Second)
	assert.WithinDuration(t, rc.IssuedAt.Add(240*time.Hour), rc.ExpiresAt.Time, time.Second)
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()
	past := time.Now().Add(-time.Hour)
	issuer := newTestIssuer()

	tok, err := issuer.WithClock(func() time.Time { return past }).IssueAccessToken("u1")
	require.NoError(t, err)

	_, err = issuer.ParseAccessToken(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()
	tok, err := newTestIssuer().IssueRefreshToken("u2")
	require.NoError(t, err)

	other := NewIssuer(Config{AccessSecret: []byte("x"), RefreshSecret: []byte("other"), AccessTTL: time.Minute, RefreshTTL: time.Hour})
	_, err = other.ParseRefreshToken(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_KindMismatch(t *testing.T) {
	t.Parallel()
	same := []byte("shared")
	i := NewIssuer(Config{AccessSecret: same, RefreshSecret: same, AccessTTL: time.Minute, RefreshTTL: time.Hour})

	access, err := i.IssueAccessToken("u1")
	require.NoError(t, err)

	_, err = i.ParseRefreshToken(access)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()
	for _, tok := range []string{"", "not.a.jwt", "abc", "a.b.c.d"} {
		_, err := newTestIssuer().ParseRefreshToken(tok)
		assert.ErrorIs(t, err, common.ErrInvalidToken, "token %q", tok)
	}
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u1",
		Kind:             KindRefresh,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestIssuer().ParseRefreshToken(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_RequiresExpiry(t *testing.T) {
	t.Parallel()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u1", Kind: KindRefresh}).
		SignedString([]byte("refresh-secret"))
	require.NoError(t, err)

	_, err = newTestIssuer().ParseRefreshToken(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestIssue_MissingSecretIsInternal(t *testing.T) {
	t.Parallel()
	i := NewIssuer(Config{AccessTTL: time.Minute, RefreshTTL: time.Hour})

	_, err := i.IssueAccessToken("u1")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.True(t, errors.Is(err, errEmptySecret))

	_, err = i.IssueRefreshToken("u1")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestIssue_InvalidTTLIsInternal(t *testing.T) {
	t.Parallel()
	i := NewIssuer(Config{AccessSecret: []byte("a"), RefreshSecret: []byte("r")})

	_, err := i.IssueRefreshToken("u1")
	assert.ErrorIs(t, err, common.ErrorInternal)
}
