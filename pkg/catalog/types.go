package catalog

// Product is a catalog record as served by the remote API.
type Product struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	Brand              string   `json:"brand"`
	Category           string   `json:"category"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`
}

// ProductInput is the body of an add or update request.
//
// Numeric fields are pointers without omitempty: a value the operator left
// blank or mistyped is sent as null rather than dropped, so the remote API
// sees exactly what the form held.
type ProductInput struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              *float64 `json:"price"`
	DiscountPercentage *float64 `json:"discountPercentage"`
	Rating             *float64 `json:"rating"`
	Stock              *int     `json:"stock"`
	Brand              string   `json:"brand"`
	Category           string   `json:"category"`
	Thumbnail          string   `json:"thumbnail"`
}

// ProductPage is one page of the product listing.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// User is the operator profile returned by the auth endpoints.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Gender    string `json:"gender"`
	Image     string `json:"image"`
}

// Credentials are posted to the login endpoint.
type Credentials struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	ExpiresInMins int    `json:"expiresInMins,omitempty"`
}

// LoginResult is a successful login: the profile plus the opaque tokens.
type LoginResult struct {
	User
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Tokens is the response of the refresh endpoint.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Float returns a pointer to v, for building ProductInput values.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for building ProductInput values.
func Int(v int) *int { return &v }
