package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/storefront-admin/pkg/config"
	"github.com/doodlesbykumbi/storefront-admin/pkg/db"
)

// configurationApplyCmd represents the configuration apply command
var configurationApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Signal the running server to reload its configuration",
	Long: `Validate the configuration file and then signal the running storefront
server to reload it.

Changes to environment variables are NOT picked up, since a process
environment is fixed once the process has started. api_base_url,
session_store and metrics_enabled need a restart.

Use --test to validate configuration without signalling.

Example:
  storefrontctl configuration apply
  storefrontctl configuration apply --test`,
	Run: func(cmd *cobra.Command, args []string) {
		testMode, _ := cmd.Flags().GetBool("test")

		if err := applyConfiguration(os.Stdout, testMode); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationApplyCmd)
	configurationApplyCmd.Flags().Bool("test", false, "Validate configuration without signalling the server")
}

// validateConfiguration loads the configuration and checks the environment
// the server will need to start with it.
func validateConfiguration(w io.Writer) error {
	fmt.Fprintln(w, "Validating configuration...")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	fmt.Fprintf(w, "Config file: %s\n", cfg.ConfigFilePath())

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if os.Getenv("STOREFRONT_DATA_KEY") == "" {
		return errors.New("STOREFRONT_DATA_KEY is not set")
	}
	if cfg.SessionStore == config.SessionStorePostgres && db.URL() == "" {
		return errors.New("DATABASE_URL is not set")
	}

	fmt.Fprintln(w, "Configuration is valid.")
	return nil
}

func applyConfiguration(w io.Writer, testMode bool) error {
	if err := validateConfiguration(w); err != nil {
		return err
	}

	if testMode {
		fmt.Fprintln(w, "Test mode: not signalling server.")
		return nil
	}

	fmt.Fprintln(w, "Sending reload signal to server...")

	output, err := exec.Command("pgrep", "-f", "storefrontctl server").Output()
	if err != nil {
		return errors.New("no running storefrontctl server found")
	}

	var pid int
	if _, err := fmt.Sscanf(string(output), "%d", &pid); err != nil {
		return fmt.Errorf("failed to parse PID: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := process.Signal(syscall.SIGHUP); err != nil {
		return fmt.Errorf("failed to send signal: %w", err)
	}

	fmt.Fprintf(w, "Sent reload signal to process %d\n", pid)
	return nil
}
