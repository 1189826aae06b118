package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RealHickory4944/puter/internal/puterc/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file and environment variables.

If a field name is specified, only that field's value is displayed.
Available fields: configfile, api_base_url, gui_origin, token, model, allow_temp_guest, temp_guest_per_request, auth_timeout_seconds, callback_port, promptdirs

Examples:
  puter config                  # Show all configuration
  puter config model            # Show only model
  puter config api_base_url     # Show only API base URL
  puter config token            # Show only (masked) token`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		// If a field is specified, show only that field
		if len(args) > 0 {
			field := strings.ToLower(args[0])
			switch field {
			case "configfile":
				fmt.Println(viper.ConfigFileUsed())
			case "api_base_url", "apibaseurl":
				fmt.Println(cfg.APIBaseURL)
			case "gui_origin", "guiorigin":
				fmt.Println(cfg.GUIOrigin)
			case "token":
				fmt.Println(maskToken(cfg.Token))
			case "model":
				fmt.Println(cfg.Model)
			case "allow_temp_guest", "allowtempguest":
				fmt.Println(cfg.AllowTempGuest)
			case "temp_guest_per_request", "tempguestperrequest":
				fmt.Println(cfg.TempGuestPerRequest)
			case "auth_timeout_seconds", "authtimeoutseconds":
				fmt.Println(cfg.AuthTimeoutSeconds)
			case "callback_port", "callbackport":
				fmt.Println(cfg.CallbackPort)
			case "promptdirs":
				fmt.Println(strings.Join(cfg.PromptDirs, ","))
			default:
				fmt.Fprintf(os.Stderr, "Unknown field: %s\n", args[0])
				fmt.Fprintf(os.Stderr, "Available fields: configfile, api_base_url, gui_origin, token, model, allow_temp_guest, temp_guest_per_request, auth_timeout_seconds, callback_port, promptdirs\n")
				os.Exit(1)
			}
			return
		}

		// Display all configuration values
		fmt.Printf("ConfigFile: %s\n", viper.ConfigFileUsed())
		fmt.Printf("APIBaseURL: %s\n", cfg.APIBaseURL)
		fmt.Printf("GUIOrigin: %s\n", cfg.GUIOrigin)
		fmt.Printf("Token: %s\n", maskToken(cfg.Token))
		fmt.Printf("Model: %s\n", cfg.Model)
		fmt.Printf("AllowTempGuest: %v\n", cfg.AllowTempGuest)
		fmt.Printf("TempGuestPerRequest: %v\n", cfg.TempGuestPerRequest)
		fmt.Printf("AuthTimeoutSeconds: %d\n", cfg.AuthTimeoutSeconds)
		fmt.Printf("CallbackPort: %d\n", cfg.CallbackPort)
		fmt.Printf("PromptDirectories: %s\n", strings.Join(cfg.PromptDirs, ","))
	},
}

// maskToken returns a masked version of the token for security
func maskToken(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func init() {
	rootCmd.AddCommand(configCmd)
}
