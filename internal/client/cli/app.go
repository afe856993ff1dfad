package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
	"github.com/dmitrijs2005/authkeeper/internal/client/session"
	"github.com/dmitrijs2005/authkeeper/internal/common"
)

var errSessionExpired = errors.New("session expired, run `authctl login`")

// App carries everything a command needs once flags are parsed.
type App struct {
	cfg      *config.Config
	api      client.Client
	sessions *session.Store
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(cfg *config.Config, api client.Client, in io.Reader, out io.Writer) *App {
	return &App{
		cfg:      cfg,
		api:      api,
		sessions: session.NewStore(cfg.SessionFile),
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) loadSession() (*session.Session, error) {
	sess, err := a.sessions.Load()
	if errors.Is(err, session.ErrNoSession) {
		return nil, fmt.Errorf("%w, run `authctl login`", err)
	}
	return sess, err
}

// refreshSession rotates the stored pair. A rejected refresh token ends the
// session, since the server no longer recognizes it.
func (a *App) refreshSession(ctx context.Context, sess *session.Session) error {
	if sess.RefreshToken == "" {
		return errSessionExpired
	}
	pair, err := a.api.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			if cerr := a.sessions.Clear(); cerr != nil {
				return errors.Join(errSessionExpired, cerr)
			}
			return fmt.Errorf("%w: %v", errSessionExpired, err)
		}
		return err
	}
	sess.AccessToken = pair.AccessToken
	sess.RefreshToken = pair.RefreshToken
	return a.sessions.Save(sess)
}

// withAccess runs fn with the stored access token and retries it once after
// a refresh when the server turns the token down.
func (a *App) withAccess(ctx context.Context, fn func(accessToken string) error) error {
	sess, err := a.loadSession()
	if err != nil {
		return err
	}

	err = fn(sess.AccessToken)
	if !client.IsTokenRejected(err) {
		return err
	}
	if err := a.refreshSession(ctx, sess); err != nil {
		return err
	}
	return fn(sess.AccessToken)
}
