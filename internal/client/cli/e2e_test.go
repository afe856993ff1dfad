package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/authkeeper/internal/client/session"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/credentials"
	"github.com/dmitrijs2005/authkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/dmitrijs2005/authkeeper/internal/server/uploads"
)

type memUploader struct{}

func (memUploader) Upload(_ context.Context, obj uploads.Object) (string, error) {
	return "http://storage/" + obj.Name, nil
}

func startServer(t *testing.T) string {
	t.Helper()
	issuer := auth.NewIssuer(auth.Config{
		AccessSecret:  []byte("access"),
		RefreshSecret: []byte("refresh"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	svc := services.NewUserService(repomanager.NewMemoryRepositoryManager(), issuer,
		credentials.NewBcryptHasher(bcrypt.MinCost), memUploader{}, services.Policy{}, nil, nil)
	srv := httptest.NewServer(httpapi.NewRouter(httpapi.RouterConfig{
		Users:   svc,
		Tokens:  issuer,
		Cookies: httpapi.CookieConfig{AccessTTL: time.Minute, RefreshTTL: time.Hour},
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestAgainstServer_FullSession(t *testing.T) {
	pipedInput(t)
	url := startServer(t)
	dir := t.TempDir()
	sessionFile := filepath.Join(dir, "session.json")
	avatar := filepath.Join(dir, "alice.png")
	require.NoError(t, os.WriteFile(avatar, []byte("png"), 0o600))

	run := func(input string, args ...string) (string, error) {
		var out bytes.Buffer
		cmd := NewRootCommand(strings.NewReader(input), &out, nil)
		cmd.SetArgs(append([]string{"--server", url, "--session", sessionFile}, args...))
		err := cmd.ExecuteContext(context.Background())
		return out.String(), err
	}

	out, err := run("secret\nsecret\n", "register",
		"--full-name", "Alice A", "--email", "alice@example.com", "--username", "Alice", "--avatar", avatar)
	require.NoError(t, err)
	assert.Contains(t, out, "Registered alice")

	_, err = run("secret\nsecret\n", "register",
		"--full-name", "Alice A", "--email", "alice@example.com", "--username", "alice2", "--avatar", avatar)
	assert.ErrorContains(t, err, "already exists")

	_, err = run("wrong\n", "login", "--username", "alice")
	assert.ErrorContains(t, err, "invalid credentials")

	out, err = run("secret\n", "login", "--email", "alice@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice")

	store := session.NewStore(sessionFile)
	first, err := store.Load()
	require.NoError(t, err)

	out, err = run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "email:     alice@example.com")
	assert.Contains(t, out, "avatar:    http://storage/alice.png")

	_, err = run("", "refresh")
	require.NoError(t, err)
	second, err := store.Load()
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = run("secret\nbetter\nbetter\n", "change-password")
	require.NoError(t, err)

	_, err = run("", "logout")
	require.NoError(t, err)
	_, err = store.Load()
	assert.ErrorIs(t, err, session.ErrNoSession)

	_, err = run("secret\n", "login", "--username", "alice")
	assert.Error(t, err, "old password no longer works")
	out, err = run("better\n", "login", "--username", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice")
}
