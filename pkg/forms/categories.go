package forms

import (
	"strings"

	"github.com/doodlesbykumbi/storefront-admin/pkg/dashboard"
)

// Categories are the options offered by the product form.
var Categories = []string{
	"smartphones",
	"laptops",
	"fragrances",
	"skincare",
	"groceries",
	"home-decoration",
	"furniture",
	"tops",
	"womens-dresses",
	"womens-shoes",
	"mens-shirts",
	"mens-shoes",
	"mens-watches",
	"womens-watches",
	"womens-bags",
	"womens-jewellery",
	"sunglasses",
	"automotive",
	"motorcycle",
	"lighting",
}

// CategoryLabel is the display label of a category: capitalised, with the
// first hyphen turned into a space ("home-decoration" is "Home decoration").
func CategoryLabel(category string) string {
	return dashboard.Capitalize(strings.Replace(category, "-", " ", 1))
}

// Option is one entry of the category select.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// CategoryOptions returns the select options with selected marked. A value
// outside the fixed list is kept as an extra first option so that editing a
// product does not silently change its category.
func CategoryOptions(selected string) []Option {
	out := make([]Option, 0, len(Categories)+1)
	known := false
	for _, c := range Categories {
		if c == selected {
			known = true
		}
		out = append(out, Option{Value: c, Label: CategoryLabel(c), Selected: c == selected})
	}
	if !known && selected != "" {
		out = append([]Option{{Value: selected, Label: CategoryLabel(selected), Selected: true}}, out...)
	}
	return out
}
