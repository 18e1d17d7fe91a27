package portal

import (
	"fmt"
	"net/url"
)

const (
	// DefaultBaseURL is the base URL for the Apress account portal
	DefaultBaseURL = "https://www.apress.com"

	// LoginPath is the login page, fetched first to seed session cookies
	LoginPath = "/customer/account/login/"

	// LoginPostPath is the endpoint the login form posts credentials to
	LoginPostPath = "/customer/account/loginPost/"

	// DashboardPath is where a successful login lands
	DashboardPath = "/customer/account/"

	// ListingPath is the paginated downloadable-products listing
	ListingPath = "/customer/account/index/"

	// DefaultPageSize is the default number of catalog rows per listing page
	DefaultPageSize = 50
)

// LoginURL returns the login page URL for the given portal base
func LoginURL(base string) string {
	return base + LoginPath
}

// LoginPostURL returns the login submission URL for the given portal base
func LoginPostURL(base string) string {
	return base + LoginPostPath
}

// DashboardURL returns the account dashboard URL for the given portal base
func DashboardURL(base string) string {
	return base + DashboardPath
}

// ListingURL constructs the URL for one page of the products listing
func ListingURL(base string, limit, page int) string {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("p", fmt.Sprintf("%d", page))

	return fmt.Sprintf("%s%s?%s", base, ListingPath, params.Encode())
}
