package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Public_DropsSecrets(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	u := &User{
		ID:           "u1",
		FullName:     "Alice Liddell",
		Email:        "alice@example.com",
		UserName:     "alice",
		PasswordHash: "$2a$10$hash",
		Avatar:       "http://s3/avatars/a.png",
		RefreshToken: "refresh-token",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	b, err := json.Marshal(u.Public())
	require.NoError(t, err)

	out := string(b)
	assert.NotContains(t, out, "$2a$10$hash")
	assert.NotContains(t, out, "refresh-token")
	assert.Contains(t, out, `"username":"alice"`)
	assert.Contains(t, out, `"avatar":"http://s3/avatars/a.png"`)
}
