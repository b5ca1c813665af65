package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Check catalog credentials",
	Long: `Sign in to the remote catalog with STOREFRONT_USERNAME and
STOREFRONT_PASSWORD and print the operator profile the tokens resolve to.`,
	Run: func(cmd *cobra.Command, args []string) {
		user, err := whoami(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		_ = printJSON(os.Stdout, user)
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func whoami(cmd *cobra.Command) (*catalog.User, error) {
	creds := catalog.Credentials{
		Username: os.Getenv("STOREFRONT_USERNAME"),
		Password: os.Getenv("STOREFRONT_PASSWORD"),
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, errors.New("STOREFRONT_USERNAME and STOREFRONT_PASSWORD must be set")
	}

	client, err := newCatalogClient()
	if err != nil {
		return nil, err
	}

	login, err := client.Login(cmd.Context(), creds)
	if err != nil {
		var apiErr *catalog.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("login rejected: %s", apiErr.Detail())
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return client.CurrentUser(cmd.Context(), login.AccessToken)
}
