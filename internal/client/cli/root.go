package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
)

// NewClientFunc builds the API client for a resolved config.
type NewClientFunc func(cfg *config.Config) client.Client

func defaultClient(cfg *config.Config) client.Client {
	return client.NewHTTPClient(cfg.ServerURL, cfg.Timeout)
}

// NewRootCommand assembles authctl. A nil newClient talks HTTP to the
// configured server.
func NewRootCommand(in io.Reader, out io.Writer, newClient NewClientFunc) *cobra.Command {
	if newClient == nil {
		newClient = defaultClient
	}

	var (
		configPath  string
		serverURL   string
		sessionFile string
		timeout     time.Duration
		app         *App
	)

	cmd := &cobra.Command{
		Use:           "authctl",
		Short:         "Command-line client for the authkeeper service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("server") {
				cfg.ServerURL = serverURL
			}
			if flags.Changed("session") {
				cfg.SessionFile = sessionFile
			}
			if flags.Changed("timeout") {
				cfg.Timeout = timeout
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			app = NewApp(cfg, newClient(cfg), in, out)
			return nil
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)

	pf := cmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "path to a JSON config file")
	pf.StringVarP(&serverURL, "server", "s", "", "base URL of the authkeeper server")
	pf.StringVar(&sessionFile, "session", "", "path to the session file")
	pf.DurationVar(&timeout, "timeout", 0, "HTTP request timeout")

	current := func() *App { return app }
	cmd.AddCommand(
		newRegisterCommand(current),
		newLoginCommand(current),
		newRefreshCommand(current),
		newLogoutCommand(current),
		newChangePasswordCommand(current),
		newWhoamiCommand(current),
	)
	return cmd
}
