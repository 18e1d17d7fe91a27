// Package portal provides a session-authenticated client for the Apress
// customer-account portal.
//
// This package includes:
//   - A cookie-jar backed HTTP client with redirect control
//   - Form-based login with redirect-target disambiguation
//   - A paginated catalog fetcher that parses the downloadable-products
//     HTML table into Product records
//   - Built-in error types for better error handling
//
// The portal's HTML structure is an external, unversioned contract: the
// selectors in this package track what the site serves today.
//
// Example usage:
//
//	client, err := portal.NewClient(portal.DefaultBaseURL, log)
//	if err != nil {
//	    // handle
//	}
//
//	ok, err := client.Login(ctx, "user@example.com", password)
//	if err != nil || !ok {
//	    // credentials rejected
//	}
//
//	products, err := client.FetchProducts(ctx)
//	for _, p := range products {
//	    for ext, url := range p.Links {
//	        // download url as p.DirName()+"."+ext
//	    }
//	}
package portal
