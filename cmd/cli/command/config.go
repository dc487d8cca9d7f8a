package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"novelhub/internal/config"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Manage the CLI profile",
	Annotations: map[string]string{standalone: "true"},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write ~/.novelhub/config.yaml",
	Annotations: map[string]string{standalone: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadCLIConfig(cfgFile)
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("backend-url"); v != "" {
			cfg.BackendURL = v
		}
		if v, _ := cmd.Flags().GetString("anon-key"); v != "" {
			cfg.AnonKey = v
		}
		if v, _ := cmd.Flags().GetString("token-store"); v != "" {
			cfg.TokenStore = v
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(cfgFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", cfgFile)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Print the effective configuration",
	Annotations: map[string]string{standalone: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadCLIConfig(cfgFile)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Config file:     %s\n", cfgFile)
		fmt.Fprintf(out, "Backend URL:     %s\n", cfg.BackendURL)
		fmt.Fprintf(out, "Anon key set:    %t\n", cfg.AnonKey != "")
		fmt.Fprintf(out, "Token store:     %s\n", cfg.TokenStore)
		fmt.Fprintf(out, "Request timeout: %s\n", cfg.RequestTimeout)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configShowCmd)
	configInitCmd.Flags().String("backend-url", "", "backend base URL, e.g. https://xyz.example.co")
	configInitCmd.Flags().String("anon-key", "", "backend anonymous API key")
	configInitCmd.Flags().String("token-store", "", "where to keep tokens: keyring or file")
}
