package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List or search products",
	Long: `List one page of products, or search them with --query.

Example:
  storefrontctl products list
  storefrontctl products list --skip 10 --limit 5
  storefrontctl products list --query phone`,
	Run: func(cmd *cobra.Command, args []string) {
		query, _ := cmd.Flags().GetString("query")
		skip, _ := cmd.Flags().GetInt("skip")
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newCatalogClient()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		ctx := cmd.Context()
		page, err := client.ListProducts(ctx, skip, limit)
		if query != "" {
			page, err = client.SearchProducts(ctx, query, skip, limit)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to list products:", err)
			os.Exit(1)
		}
		_ = printJSON(os.Stdout, page)
	},
}

func init() {
	productsCmd.AddCommand(productsListCmd)
	productsListCmd.Flags().StringP("query", "q", "", "search term")
	productsListCmd.Flags().Int("skip", 0, "number of products to skip")
	productsListCmd.Flags().Int("limit", 10, "page size")
}
