/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RealHickory4944/puter/internal/puterc/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "puter",
	Short: "A CLI client for the Puter AI API",
	Long: `puter is a command-line client for the Puter AI chat API.
It sends chat prompts through Puter's driver-call endpoint and prints
the normalized response.

Authentication uses a bearer token, either supplied directly (config
file or PUTER_TOKEN) or obtained through a browser-based temporary
guest sign-in ('puter login', or allow_temp_guest in the config).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/puter/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("PUTER") // Set prefix for environment variables
	viper.AutomaticEnv()        // read in environment variables that match

	// Determine config directory for user config
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	userConfigDir := filepath.Join(home, ".config", "puter")

	defaultConfig := config.NewDefaultConfig(filepath.Join(userConfigDir, "prompts"))

	// Set default values from the config package
	viper.SetDefault("api_base_url", defaultConfig.APIBaseURL)
	viper.SetDefault("gui_origin", defaultConfig.GUIOrigin)
	viper.SetDefault("token", defaultConfig.Token)
	viper.SetDefault("model", defaultConfig.Model)
	viper.SetDefault("allow_temp_guest", defaultConfig.AllowTempGuest)
	viper.SetDefault("temp_guest_per_request", defaultConfig.TempGuestPerRequest)
	viper.SetDefault("auth_timeout_seconds", defaultConfig.AuthTimeoutSeconds)
	viper.SetDefault("callback_port", defaultConfig.CallbackPort)
	viper.SetDefault("prompt_dirs", defaultConfig.PromptDirs)

	// Bind environment variables
	viper.BindEnv("api_base_url", "PUTER_API_BASE_URL")
	viper.BindEnv("gui_origin", "PUTER_GUI_ORIGIN")
	viper.BindEnv("token", "PUTER_TOKEN")
	viper.BindEnv("model", "PUTER_MODEL")
	viper.BindEnv("allow_temp_guest", "PUTER_ALLOW_TEMP_GUEST")
	viper.BindEnv("temp_guest_per_request", "PUTER_TEMP_GUEST_PER_REQUEST")
	viper.BindEnv("auth_timeout_seconds", "PUTER_AUTH_TIMEOUT_SECONDS")
	viper.BindEnv("callback_port", "PUTER_CALLBACK_PORT")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)

		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			}
		}
	} else {
		// Load system-wide config first (lower priority)
		systemConfigPaths := []string{
			"/etc/puter",
			"/usr/local/etc/puter",
		}

		systemConfigLoaded := false
		for _, path := range systemConfigPaths {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		if err := viper.ReadInConfig(); err == nil {
			systemConfigLoaded = true
			if verbose {
				fmt.Fprintln(os.Stderr, "Loaded system-wide config:", viper.ConfigFileUsed())
			}
		}

		// Load user config (higher priority) - merge with system config
		viper.AddConfigPath(userConfigDir)
		if systemConfigLoaded {
			if err := viper.MergeInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
				}
			} else if verbose {
				fmt.Fprintln(os.Stderr, "Merged user config:", viper.ConfigFileUsed())
			}
		} else {
			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				}
			}
		}
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		fmt.Fprintln(os.Stderr, "Environment variables:")
		fmt.Fprintln(os.Stderr, "  PUTER_API_BASE_URL:", viper.GetString("api_base_url"))
		fmt.Fprintln(os.Stderr, "  PUTER_GUI_ORIGIN:", viper.GetString("gui_origin"))
		fmt.Fprintln(os.Stderr, "  PUTER_MODEL:", viper.GetString("model"))
		fmt.Fprintln(os.Stderr, "  PUTER_ALLOW_TEMP_GUEST:", viper.GetBool("allow_temp_guest"))
		fmt.Fprintln(os.Stderr, "  PUTER_CALLBACK_PORT:", viper.GetInt("callback_port"))
	}
}
