package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/storefront-admin/pkg/audit"
	"github.com/doodlesbykumbi/storefront-admin/pkg/forms"
)

var productsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a product",
	Long: `Update a product. The current product is fetched first and only the
fields given as flags are changed.

Example:
  storefrontctl products update 3 --price 19.99 --stock 40`,
	Args: cobra.ExactArgs(1),
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

		current, err := client.GetProduct(cmd.Context(), id)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to get product:", err)
			os.Exit(1)
		}

		form := productFormFromFlags(cmd, forms.FromProduct(current))
		if err := form.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		product, err := client.UpdateProduct(cmd.Context(), id, form.Input())
		event := audit.ProductEvent{
			Username:  cliUser(),
			Operation: audit.ProductUpdate,
			ProductID: id,
			Title:     form.Title,
			Success:   err == nil,
		}
		if err != nil {
			event.ErrorMessage = err.Error()
		}
		audit.LogContext(cmd.Context(), event)

		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to update product:", err)
			os.Exit(1)
		}
		_ = printJSON(os.Stdout, product)
	},
}

func init() {
	productsCmd.AddCommand(productsUpdateCmd)
	addProductFlags(productsUpdateCmd)
}
