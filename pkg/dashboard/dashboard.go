// Package dashboard computes the aggregates shown on the landing page from
// the products currently held in a session's catalog mirror.
package dashboard

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
)

const (
	priceSeriesLen = 10
	pieSlices      = 5
	shortTitleLen  = 10
)

// Palette colours the pie slices, in order.
var Palette = []string{"#3B82F6", "#8B5CF6", "#10B981", "#F59E0B", "#EF4444"}

// Stat is one headline figure.
type Stat struct {
	Title  string `json:"title"`
	Value  string `json:"value"`
	Change string `json:"change"`
	Icon   string `json:"icon"`
	Color  string `json:"color"`
}

// CategoryCount is the number of held products in a category.
type CategoryCount struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
}

// PricePoint is one product of the price vs rating series.
type PricePoint struct {
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Rating float64 `json:"rating"`
}

// Slice is one slice of the category distribution.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
	// Percent is the share of the drawn slices, rounded to a whole number.
	Percent int `json:"percent"`
}

// Summary is everything the dashboard renders.
type Summary struct {
	Stats      []Stat          `json:"stats"`
	Categories []CategoryCount `json:"categories"`
	Prices     []PricePoint    `json:"prices"`
	Pie        []Slice         `json:"pie"`
	// MaxCount is the largest category count, for scaling bars.
	MaxCount int `json:"maxCount"`
	// MaxPrice is the largest price in Prices, for scaling the series.
	MaxPrice float64 `json:"maxPrice"`
}

// Summarize aggregates products.
func Summarize(products []catalog.Product) Summary {
	var (
		revenue     float64
		ratingTotal float64
		stock       int
	)
	for _, p := range products {
		revenue += p.Price
		ratingTotal += p.Rating
		stock += p.Stock
	}
	avgRating := 0.0
	if len(products) > 0 {
		avgRating = ratingTotal / float64(len(products))
	}

	s := Summary{
		Stats: []Stat{
			{Title: "Total Revenue", Value: fmt.Sprintf("$%.2f", revenue), Change: "+12.5%", Icon: "dollar", Color: "green"},
			{Title: "Products", Value: strconv.Itoa(len(products)), Change: "+8.2%", Icon: "package", Color: "blue"},
			{Title: "Average Rating", Value: fmt.Sprintf("%.1f", avgRating), Change: "+0.3", Icon: "star", Color: "yellow"},
			{Title: "Total Stock", Value: strconv.Itoa(stock), Change: "+15.3%", Icon: "cart", Color: "purple"},
		},
		Categories: CountCategories(products),
	}

	for _, c := range s.Categories {
		if c.Count > s.MaxCount {
			s.MaxCount = c.Count
		}
	}

	n := len(products)
	if n > priceSeriesLen {
		n = priceSeriesLen
	}
	s.Prices = make([]PricePoint, 0, n)
	for _, p := range products[:n] {
		s.Prices = append(s.Prices, PricePoint{Name: ShortTitle(p.Title), Price: p.Price, Rating: p.Rating})
		if p.Price > s.MaxPrice {
			s.MaxPrice = p.Price
		}
	}

	s.Pie = pie(s.Categories)
	return s
}

// CountCategories counts products per category, in order of first appearance.
func CountCategories(products []catalog.Product) []CategoryCount {
	index := map[string]int{}
	var out []CategoryCount
	for _, p := range products {
		i, ok := index[p.Category]
		if !ok {
			i = len(out)
			index[p.Category] = i
			out = append(out, CategoryCount{Category: p.Category, Label: Capitalize(p.Category)})
		}
		out[i].Count++
	}
	return out
}

func pie(categories []CategoryCount) []Slice {
	n := len(categories)
	if n > pieSlices {
		n = pieSlices
	}

	total := 0
	for _, c := range categories[:n] {
		total += c.Count
	}

	out := make([]Slice, 0, n)
	for i, c := range categories[:n] {
		percent := 0
		if total > 0 {
			percent = int(float64(c.Count)*100/float64(total) + 0.5)
		}
		out = append(out, Slice{Name: c.Label, Value: c.Count, Color: Palette[i], Percent: percent})
	}
	return out
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// ShortTitle is the first ten characters of title followed by "...".
func ShortTitle(title string) string {
	runes := []rune(title)
	if len(runes) > shortTitleLen {
		runes = runes[:shortTitleLen]
	}
	return string(runes) + "..."
}
