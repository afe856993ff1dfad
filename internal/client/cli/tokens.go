package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

func newRefreshCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored refresh token for a new pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Refresh(cmd.Context())
		},
	}
}

func newLogoutCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session on the server and forget it locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Logout(cmd.Context())
		},
	}
}

func (a *App) Refresh(ctx context.Context) error {
	sess, err := a.loadSession()
	if err != nil {
		return err
	}
	if err := a.refreshSession(ctx, sess); err != nil {
		return err
	}
	a.printf("Tokens refreshed\n")
	return nil
}

// Logout removes the local session even when the server already considers
// it gone.
func (a *App) Logout(ctx context.Context) error {
	err := a.withAccess(ctx, func(accessToken string) error {
		return a.api.Logout(ctx, accessToken)
	})
	if err != nil && !errors.Is(err, common.ErrorUnauthorized) && !errors.Is(err, errSessionExpired) {
		return err
	}
	if err := a.sessions.Clear(); err != nil {
		return err
	}
	a.printf("Logged out\n")
	return nil
}
