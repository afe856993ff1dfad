package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/common"
)

type registerOptions struct {
	fullName   string
	email      string
	userName   string
	avatar     string
	coverImage string
}

func newRegisterCommand(app func() *App) *cobra.Command {
	var opts registerOptions

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Register(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.fullName, "full-name", "", "full name")
	f.StringVar(&opts.email, "email", "", "email address")
	f.StringVar(&opts.userName, "username", "", "user name")
	f.StringVar(&opts.avatar, "avatar", "", "path to the avatar image (required)")
	f.StringVar(&opts.coverImage, "cover-image", "", "path to an optional cover image")
	return cmd
}

// Register prompts for whatever was not given as a flag and creates the
// account. It does not log in.
func (a *App) Register(ctx context.Context, opts registerOptions) error {
	prompts := []struct {
		value  *string
		prompt string
	}{
		{&opts.fullName, "Enter full name"},
		{&opts.email, "Enter email"},
		{&opts.userName, "Enter username"},
		{&opts.avatar, "Enter path to avatar image"},
	}
	for _, p := range prompts {
		if *p.value != "" {
			continue
		}
		v, err := GetSimpleText(a.reader, p.prompt, a.out)
		if err != nil {
			return err
		}
		*p.value = v
	}

	password, err := GetNewPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	avatar, closeAvatar, err := openFile(opts.avatar)
	if err != nil {
		return err
	}
	defer closeAvatar()

	var cover *client.File
	if opts.coverImage != "" {
		c, closeCover, err := openFile(opts.coverImage)
		if err != nil {
			return err
		}
		defer closeCover()
		cover = c
	}

	user, err := a.api.Register(ctx, client.RegisterRequest{
		FullName:   opts.fullName,
		Email:      opts.email,
		UserName:   opts.userName,
		Password:   string(password),
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		return err
	}

	a.printf("Registered %s (%s)\n", user.UserName, user.ID)
	return nil
}

func openFile(path string) (*client.File, func(), error) {
	if path == "" {
		return nil, func() {}, errors.New("avatar is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &client.File{Name: filepath.Base(path), Content: f}, func() { _ = f.Close() }, nil
}
