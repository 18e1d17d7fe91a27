package portal

import (
	"context"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	productRowSelector    = "table#my-downloadable-products-table tbody tr"
	titleCellSelector     = "td:nth-of-type(3)"
	formatOptionsSelector = "td:nth-of-type(4) option"
	nextPageSelector      = "div.pager div.pages li.next"
)

// FetchProducts walks the paginated downloadable-products listing and
// returns every product it can parse, in listing order.
//
// Redirects are suppressed on the listing requests: a redirect here means
// the session is no longer authenticated, and the redirect response body
// simply yields no rows. A page without rows ends the walk with whatever
// has been accumulated so far; partial results are not an error. The walk
// otherwise continues while the pager shows a "next" control.
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	var products []Product

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return products, err
		}

		c.logger.InfoWithFields("fetching products page", map[string]interface{}{
			"page": page,
		})

		resp, err := c.GetNoRedirect(ctx, ListingURL(c.baseURL, c.pageSize, page))
		if err != nil {
			return products, err
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if err != nil {
			return products, &Error{
				Type:    ErrorTypeParsing,
				Message: "failed to parse listing page: " + err.Error(),
				Code:    resp.StatusCode,
			}
		}

		rows := doc.Find(productRowSelector)
		if rows.Length() == 0 {
			c.logger.WarnWithFields("no products found on page", map[string]interface{}{
				"page": page,
			})
			return products, nil
		}

		rows.Each(func(_ int, row *goquery.Selection) {
			product, ok := c.parseProductRow(row)
			if ok {
				products = append(products, product)
			}
		})

		if doc.Find(nextPageSelector).Length() == 0 {
			break
		}
	}

	return products, nil
}

// parseProductRow extracts one Product from a listing table row. Rows
// without a title cell are dropped; rows without format options are kept
// with an empty links map.
func (c *Client) parseProductRow(row *goquery.Selection) (Product, bool) {
	titleCell := row.Find(titleCellSelector)
	if titleCell.Length() == 0 {
		c.logger.Warn("couldn't find title in product table row")
		return Product{}, false
	}

	// The portal sometimes double-encodes entities, so one decode is
	// applied on top of the parser's automatic one.
	title := html.UnescapeString(titleCell.Text())

	product := Product{
		Title: title,
		Links: make(map[string]string),
	}

	opts := row.Find(formatOptionsSelector)
	if opts.Length() == 0 {
		c.logger.WarnWithFields("couldn't find list of downloads for product", map[string]interface{}{
			"title": strings.TrimSpace(title),
		})
	}

	opts.Each(func(_ int, opt *goquery.Selection) {
		ext := strings.ToLower(strings.TrimSpace(opt.Text()))
		if ext == "" {
			c.logger.WarnWithFields("skipping download option with no format label", map[string]interface{}{
				"title": strings.TrimSpace(title),
			})
			return
		}
		url, _ := opt.Attr("value")
		product.Links[ext] = url
	})

	return product, true
}
