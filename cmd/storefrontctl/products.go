package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/storefront-admin/pkg/audit"
	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
	"github.com/doodlesbykumbi/storefront-admin/pkg/config"
	"github.com/doodlesbykumbi/storefront-admin/pkg/forms"
)

// productsCmd represents the products command
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Work with the remote product catalog",
	Long: `List, inspect and change products in the remote catalog configured by
api_base_url. Results are printed as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'products' requires a subcommand (list, get, add, update, delete)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
}

// newCatalogClient builds a client from the current configuration.
func newCatalogClient() (*catalog.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	// Keep stdout for the JSON result.
	audit.DefaultLogger.SetWriter(os.Stderr)
	return catalog.NewClient(catalog.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.RequestTimeout(),
		RateLimit: cfg.APIRateLimit,
	}), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseProductID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid product id %q", arg)
	}
	return id, nil
}

// addProductFlags registers one string flag per product form field.
func addProductFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "product title")
	cmd.Flags().String("description", "", "product description (markdown)")
	cmd.Flags().String("price", "", "price")
	cmd.Flags().String("discount-percentage", "", "discount percentage")
	cmd.Flags().String("rating", "", "rating")
	cmd.Flags().String("stock", "", "units in stock")
	cmd.Flags().String("brand", "", "brand")
	cmd.Flags().String("category", "", "category")
	cmd.Flags().String("thumbnail", "", "thumbnail URL")
}

// productFormFromFlags fills a form from the flags, starting from base so
// that an update only changes the flags that were given.
func productFormFromFlags(cmd *cobra.Command, base forms.ProductForm) forms.ProductForm {
	f := base
	fields := map[string]*string{
		"title":               &f.Title,
		"description":         &f.Description,
		"price":               &f.Price,
		"discount-percentage": &f.DiscountPercentage,
		"rating":              &f.Rating,
		"stock":               &f.Stock,
		"brand":               &f.Brand,
		"category":            &f.Category,
		"thumbnail":           &f.Thumbnail,
	}
	for name, dst := range fields {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	return f
}

// cliUser names the operator in audit events written by the CLI.
func cliUser() string {
	if u := os.Getenv("STOREFRONT_USERNAME"); u != "" {
		return u
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "storefrontctl"
}
