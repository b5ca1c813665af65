package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var productsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one product",
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

		product, err := client.GetProduct(cmd.Context(), id)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to get product:", err)
			os.Exit(1)
		}
		_ = printJSON(os.Stdout, product)
	},
}

func init() {
	productsCmd.AddCommand(productsGetCmd)
}
