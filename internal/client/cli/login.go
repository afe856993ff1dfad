package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/session"
	"github.com/dmitrijs2005/authkeeper/internal/common"
)

type loginOptions struct {
	email    string
	userName string
}

func newLoginCommand(app func() *App) *cobra.Command {
	var opts loginOptions

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Login(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", "", "log in by email")
	cmd.Flags().StringVar(&opts.userName, "username", "", "log in by username")
	return cmd
}

// Login asks for a username or email when neither flag is set. Input
// containing "@" is treated as an email.
func (a *App) Login(ctx context.Context, opts loginOptions) error {
	if opts.email == "" && opts.userName == "" {
		id, err := GetSimpleText(a.reader, "Enter username or email", a.out)
		if err != nil {
			return err
		}
		if strings.Contains(id, "@") {
			opts.email = id
		} else {
			opts.userName = id
		}
	}

	password, err := GetPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Login(ctx, client.LoginRequest{
		Email:    opts.email,
		UserName: opts.userName,
		Password: string(password),
	})
	if err != nil {
		return err
	}

	sess := &session.Session{
		ServerURL:    a.cfg.ServerURL,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	}
	if res.User != nil {
		sess.UserID = res.User.ID
		sess.UserName = res.User.UserName
	}
	if err := a.sessions.Save(sess); err != nil {
		return err
	}

	a.printf("Logged in as %s\n", sess.UserName)
	return nil
}
