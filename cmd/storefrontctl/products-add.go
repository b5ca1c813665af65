package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/storefront-admin/pkg/audit"
	"github.com/doodlesbykumbi/storefront-admin/pkg/forms"
)

var productsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a product",
	Long: `Add a product. Title, price and stock are required.

Example:
  storefrontctl products add --title "Desk Lamp" --price 24.5 --stock 12 --category home-decoration`,
	Run: func(cmd *cobra.Command, args []string) {
		form := productFormFromFlags(cmd, forms.ProductForm{})
		if err := form.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		client, err := newCatalogClient()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		product, err := client.AddProduct(cmd.Context(), form.Input())
		event := audit.ProductEvent{
			Username:  cliUser(),
			Operation: audit.ProductAdd,
			Title:     form.Title,
			Success:   err == nil,
		}
		if product != nil {
			event.ProductID = product.ID
		}
		if err != nil {
			event.ErrorMessage = err.Error()
		}
		audit.LogContext(cmd.Context(), event)

		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to add product:", err)
			os.Exit(1)
		}
		_ = printJSON(os.Stdout, product)
	},
}

func init() {
	productsCmd.AddCommand(productsAddCmd)
	addProductFlags(productsAddCmd)
}
