package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/lexilens/internal/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var configPath string

var rootCmd = &cobra.Command{
	Use:          "lexilens",
	Short:        "Legal document intelligence API",
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	def := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		def = v
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", def, "path to config.yaml (optional)")

	rootCmd.AddCommand(serveCmd, migrateCmd, usersCmd)
	usersCmd.AddCommand(usersAddCmd, usersListCmd)
	usersAddCmd.Flags().StringP("email", "e", "", "email of the new user")
	_ = usersAddCmd.MarkFlagRequired("email")
}

// loadConfig reads and validates the config. serve needs a JWT secret; the
// admin commands only touch the database, so they skip validation.
func loadConfig(validate bool) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, nil
}
