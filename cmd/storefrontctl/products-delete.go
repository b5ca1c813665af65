package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/storefront-admin/pkg/audit"
)

var productsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseProductID(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		client, err := newCatalogClient()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		deleted, err := client.DeleteProduct(cmd.Context(), id)
		event := audit.ProductEvent{
			Username:  cliUser(),
			Operation: audit.ProductDelete,
			ProductID: id,
			Success:   err == nil,
		}
		if err != nil {
			event.ErrorMessage = err.Error()
		}
		audit.LogContext(cmd.Context(), event)

		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to delete product:", err)
			os.Exit(1)
		}
		_ = printJSON(os.Stdout, map[string]int{"deleted": deleted})
	},
}

func init() {
	productsCmd.AddCommand(productsDeleteCmd)
}
