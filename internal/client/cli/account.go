package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/common"
)

func newChangePasswordCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "change-password",
		Short: "Change the password of the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().ChangePassword(cmd.Context())
		},
	}
}

func newWhoamiCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Whoami(cmd.Context())
		},
	}
}

func (a *App) ChangePassword(ctx context.Context) error {
	oldPassword, err := GetPassword(a.reader, "Current password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(oldPassword)

	newPassword, err := GetNewPassword(a.reader, "New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	err = a.withAccess(ctx, func(accessToken string) error {
		return a.api.ChangePassword(ctx, accessToken, string(oldPassword), string(newPassword))
	})
	if err != nil {
		return err
	}
	a.printf("Password changed\n")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	var user *client.User
	err := a.withAccess(ctx, func(accessToken string) error {
		u, err := a.api.CurrentUser(ctx, accessToken)
		user = u
		return err
	})
	if err != nil {
		return err
	}

	a.printf("id:        %s\n", user.ID)
	a.printf("username:  %s\n", user.UserName)
	a.printf("email:     %s\n", user.Email)
	a.printf("full name: %s\n", user.FullName)
	if user.Avatar != "" {
		a.printf("avatar:    %s\n", user.Avatar)
	}
	return nil
}
