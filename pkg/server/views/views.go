// Package views renders the admin pages from embedded html/template files.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
	"github.com/doodlesbykumbi/storefront-admin/pkg/dashboard"
	"github.com/doodlesbykumbi/storefront-admin/pkg/forms"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Page names.
const (
	PageLogin       = "login"
	PageDashboard   = "dashboard"
	PageProducts    = "products"
	PageProduct     = "product"
	PageProductForm = "product_form"
	PageStatus      = "status"
	PageError       = "error"
)

var pageNames = []string{
	PageLogin, PageDashboard, PageProducts, PageProduct,
	PageProductForm, PageStatus, PageError,
}

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notice shown at the top of the next page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Page is what every template receives.
type Page struct {
	Title string
	// Nav is the highlighted navigation entry.
	Nav   string
	User  *catalog.User
	Flash *Flash
	Data  interface{}
}

// Renderer holds the parsed templates.
type Renderer struct {
	pages    map[string]*template.Template
	markdown goldmark.Markdown
}

// New parses every page against the shared layout.
func New() (*Renderer, error) {
	r := &Renderer{
		pages:    make(map[string]*template.Template, len(pageNames)),
		markdown: goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough)),
	}

	funcs := template.FuncMap{
		"markdown":      r.Markdown,
		"money":         func(v float64) string { return fmt.Sprintf("$%.2f", v) },
		"number":        forms.FormatFloat,
		"categoryLabel": forms.CategoryLabel,
		"percentOf":     percentOf,
		"pieGradient":   pieGradient,
	}

	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFiles, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes page with the given status. Nothing is written if the
// template fails.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// Markdown renders a product description. Raw HTML in the source is
// dropped by goldmark's default renderer.
func (r *Renderer) Markdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(buf.String())
}

// percentOf scales v against max as a whole percentage, for bar widths.
func percentOf(v, max interface{}) int {
	fv, fm := toFloat(v), toFloat(max)
	if fm <= 0 {
		return 0
	}
	p := int(fv / fm * 100)
	if p > 100 {
		p = 100
	}
	return p
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// pieGradient draws the category slices as a CSS conic gradient.
func pieGradient(slices []dashboard.Slice) template.CSS {
	total := 0
	for _, s := range slices {
		total += s.Value
	}
	if total == 0 {
		return template.CSS("#E5E7EB")
	}

	stops := make([]string, 0, len(slices))
	start := 0.0
	for _, s := range slices {
		end := start + float64(s.Value)/float64(total)*100
		stops = append(stops, fmt.Sprintf("%s %.2f%% %.2f%%", s.Color, start, end))
		start = end
	}
	return template.CSS("conic-gradient(" + strings.Join(stops, ", ") + ")")
}
