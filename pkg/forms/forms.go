// Package forms holds the operator-facing forms: what they accept, how they
// are validated and how their text turns into catalog requests.
package forms

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
)

// ErrMissingFields is the login form validation failure.
var ErrMissingFields = errors.New("Please fill in all fields")

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldErrors maps a form field name to its validation message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, name := range productFields {
		if msg, ok := e[name]; ok {
			msgs = append(msgs, msg)
		}
	}
	return strings.Join(msgs, "; ")
}

var productFields = []string{"title", "description", "price", "discountPercentage", "rating", "stock", "brand", "category", "thumbnail"}

var fieldLabels = map[string]string{
	"title": "Product title",
	"price": "Price",
	"stock": "Stock",
}

// ProductForm is the add/edit product form exactly as entered.
type ProductForm struct {
	Title              string `validate:"required"`
	Description        string
	Price              string `validate:"required"`
	DiscountPercentage string
	Rating             string
	Stock              string `validate:"required"`
	Brand              string
	Category           string
	Thumbnail          string
}

// FromProduct prefills the form for editing p.
func FromProduct(p *catalog.Product) ProductForm {
	if p == nil {
		return ProductForm{}
	}
	return ProductForm{
		Title:              p.Title,
		Description:        p.Description,
		Price:              FormatFloat(p.Price),
		DiscountPercentage: FormatFloat(p.DiscountPercentage),
		Rating:             FormatFloat(p.Rating),
		Stock:              strconv.Itoa(p.Stock),
		Brand:              p.Brand,
		Category:           p.Category,
		Thumbnail:          p.Thumbnail,
	}
}

// ParseProductForm reads a submitted product form.
func ParseProductForm(r *http.Request) ProductForm {
	return ProductForm{
		Title:              r.PostFormValue("title"),
		Description:        r.PostFormValue("description"),
		Price:              r.PostFormValue("price"),
		DiscountPercentage: r.PostFormValue("discountPercentage"),
		Rating:             r.PostFormValue("rating"),
		Stock:              r.PostFormValue("stock"),
		Brand:              r.PostFormValue("brand"),
		Category:           r.PostFormValue("category"),
		Thumbnail:          r.PostFormValue("thumbnail"),
	}
}

// Validate checks the required fields are filled in. It returns nil or a
// FieldErrors.
func (f ProductForm) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		name := formName(fe.StructField())
		out[name] = fieldLabels[name] + " is required"
	}
	return out
}

// Input converts the form into a catalog request body. Numbers that do not
// parse are sent as null.
func (f ProductForm) Input() catalog.ProductInput {
	in := catalog.ProductInput{
		Title:       f.Title,
		Description: f.Description,
		Brand:       f.Brand,
		Category:    f.Category,
		Thumbnail:   f.Thumbnail,
	}
	if v, ok := FloatPrefix(f.Price); ok {
		in.Price = &v
	}
	if v, ok := FloatPrefix(f.DiscountPercentage); ok {
		in.DiscountPercentage = &v
	}
	if v, ok := FloatPrefix(f.Rating); ok {
		in.Rating = &v
	}
	if v, ok := IntPrefix(f.Stock); ok {
		in.Stock = &v
	}
	return in
}

func formName(structField string) string {
	if structField == "" {
		return structField
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// ParseLoginForm reads a submitted login form.
func ParseLoginForm(r *http.Request) LoginForm {
	return LoginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
}

// Validate returns ErrMissingFields unless both fields are filled in.
func (f LoginForm) Validate() error {
	if err := validate.Struct(f); err != nil {
		return ErrMissingFields
	}
	return nil
}

// Credentials converts the form for the login endpoint.
func (f LoginForm) Credentials() catalog.Credentials {
	return catalog.Credentials{Username: f.Username, Password: f.Password}
}
