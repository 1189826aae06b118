package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/RealHickory4944/puter/internal/auth"
	"github.com/RealHickory4944/puter/internal/puterc/config"
)

var loginTimeout int

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Obtain a Puter auth token via browser sign-in",
	Long: `Open the Puter sign-in page in a browser with temporary user creation
enabled and capture the resulting auth token from a local callback.

The token is printed to stdout and never written to disk, so it can be
captured into the environment:

  export PUTER_TOKEN=$(puter login)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		flow := &auth.Flow{
			GUIOrigin:      cfg.GUIOrigin,
			Port:           cfg.CallbackPort,
			AllowTempGuest: true,
			Timeout:        cfg.AuthTimeout(),
		}
		if cmd.Flags().Changed("timeout") {
			flow.Timeout = time.Duration(loginTimeout) * time.Second
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "Waiting for browser sign-in (callback port %d)...\n", cfg.CallbackPort)
		}

		token, err := flow.Run(context.Background())
		if err != nil {
			return fmt.Errorf("browser auth failed: %w", err)
		}

		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().IntVar(&loginTimeout, "timeout", 0, "Seconds to wait for the browser callback (default from config)")
}
