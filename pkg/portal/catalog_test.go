package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apressdl/pkg/logger"
)

// productRowHTML renders one listing row in the portal's table layout.
// Format options are (label, url) pairs rendered into the fourth cell.
func productRowHTML(title string, options [][2]string) string {
	var b strings.Builder
	b.WriteString("<tr><td>1</td><td>100000001</td>")
	b.WriteString("<td>" + title + "</td><td>")
	if len(options) > 0 {
		b.WriteString(`<select name="links">`)
		for _, opt := range options {
			fmt.Fprintf(&b, `<option value="%s">%s</option>`, opt[1], opt[0])
		}
		b.WriteString("</select>")
	}
	b.WriteString("</td><td>&nbsp;</td></tr>")
	return b.String()
}

// listingPageHTML wraps rows in the listing table, with or without the
// pager's "next" control.
func listingPageHTML(rows []string, hasNext bool) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString(`<table id="my-downloadable-products-table"><tbody>`)
	for _, row := range rows {
		b.WriteString(row)
	}
	b.WriteString("</tbody></table>")
	b.WriteString(`<div class="pager"><div class="pages"><ol><li class="current">1</li>`)
	if hasNext {
		b.WriteString(`<li class="next"><a href="#">Next</a></li>`)
	}
	b.WriteString("</ol></div></div>")
	b.WriteString("</body></html>")
	return b.String()
}

// newListingServer serves one canned page per index of pages, keyed by the
// "p" query parameter, and counts the requests it receives.
func newListingServer(pages []string) (*httptest.Server, *requestCounter) {
	counter := &requestCounter{pages: make(map[string]int)}

	mux := http.NewServeMux()
	mux.HandleFunc(ListingPath, func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Query().Get("p")
		counter.record(p)

		idx := 0
		fmt.Sscanf(p, "%d", &idx)
		if idx < 1 || idx > len(pages) {
			fmt.Fprint(w, listingPageHTML(nil, false))
			return
		}
		fmt.Fprint(w, pages[idx-1])
	})

	return httptest.NewServer(mux), counter
}

type requestCounter struct {
	mu    sync.Mutex
	total int
	pages map[string]int
}

func (rc *requestCounter) record(page string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.total++
	rc.pages[page]++
}

func (rc *requestCounter) Total() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.total
}

func (rc *requestCounter) Page(p string) int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.pages[p]
}

func TestFetchProductsSinglePage(t *testing.T) {
	page := listingPageHTML([]string{
		productRowHTML("Pro Go", [][2]string{
			{"PDF", "/download/1/pdf"},
			{"EPUB", "/download/1/epub"},
		}),
	}, false)

	server, counter := newListingServer([]string{page})
	defer server.Close()

	client, err := NewClient(server.URL, logger.NewTestLogger())
	require.NoError(t, err)

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)

	assert.Equal(t, "Pro Go", products[0].Title)
	assert.Equal(t, map[string]string{
		"pdf":  "/download/1/pdf",
		"epub": "/download/1/epub",
	}, products[0].Links)
	assert.Equal(t, 1, counter.Total())
}

func TestFetchProductsPagination(t *testing.T) {
	pages := []string{
		listingPageHTML([]string{
			productRowHTML("Book One", [][2]string{{"PDF", "/d/1"}}),
		}, true),
		listingPageHTML([]string{
			productRowHTML("Book Two", [][2]string{{"PDF", "/d/2"}}),
		}, true),
		listingPageHTML([]string{
			productRowHTML("Book Three", [][2]string{{"PDF", "/d/3"}}),
		}, false),
	}

	server, counter := newListingServer(pages)
	defer server.Close()

	client, err := NewClient(server.URL, logger.NewTestLogger())
	require.NoError(t, err)

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 3)
	assert.Equal(t, "Book One", products[0].Title)
	assert.Equal(t, "Book Two", products[1].Title)
	assert.Equal(t, "Book Three", products[2].Title)
	assert.Equal(t, 3, counter.Total(), "exactly one request per page")
}

func TestFetchProductsStopsOnEmptyPage(t *testing.T) {
	// Page two advertises more pages but comes back empty, so the walk
	// returns what it has and never asks for page three.
	pages := []string{
		listingPageHTML([]string{
			productRowHTML("Book One", [][2]string{{"PDF", "/d/1"}}),
		}, true),
		listingPageHTML(nil, true),
		listingPageHTML([]string{
			productRowHTML("Never Fetched", [][2]string{{"PDF", "/d/3"}}),
		}, false),
	}

	server, counter := newListingServer(pages)
	defer server.Close()

	log := logger.NewTestLogger()
	client, err := NewClient(server.URL, log)
	require.NoError(t, err)

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "Book One", products[0].Title)
	assert.Equal(t, 0, counter.Page("3"), "page three must never be requested")
	assert.True(t, log.HasMessageContaining("no products found on page"))
}

func TestFetchProductsExpiredSessionRedirect(t *testing.T) {
	// An expired session redirects the listing to the login page. With
	// redirects suppressed the 302 body has no rows, which ends the walk.
	mux := http.NewServeMux()
	mux.HandleFunc(ListingPath, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, LoginPath, http.StatusFound)
	})
	mux.HandleFunc(LoginPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "login page")
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	log := logger.NewTestLogger()
	client, err := NewClient(server.URL, log)
	require.NoError(t, err)

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.True(t, log.HasMessageContaining("no products found"))
}

func TestFetchProductsRowWithoutTitle(t *testing.T) {
	// A row with fewer than three cells has no title and is dropped; the
	// well-formed row on the same page still comes through.
	malformed := "<tr><td>1</td><td>100000002</td></tr>"
	page := listingPageHTML([]string{
		malformed,
		productRowHTML("Valid Book", [][2]string{{"PDF", "/d/1"}}),
	}, false)

	server, _ := newListingServer([]string{page})
	defer server.Close()

	log := logger.NewTestLogger()
	client, err := NewClient(server.URL, log)
	require.NoError(t, err)

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "Valid Book", products[0].Title)
	assert.True(t, log.HasMessageContaining("couldn't find title"))
}

func TestFetchProductsRowWithoutOptions(t *testing.T) {
	// A product without download options is kept with an empty links map.
	page := listingPageHTML([]string{
		productRowHTML("No Downloads Yet", nil),
	}, false)

	server, _ := newListingServer([]string{page})
	defer server.Close()

	log := logger.NewTestLogger()
	client, err := NewClient(server.URL, log)
	require.NoError(t, err)

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "No Downloads Yet", products[0].Title)
	assert.Empty(t, products[0].Links)
	assert.True(t, log.HasMessageContaining("couldn't find list of downloads"))
}

func TestFetchProductsSkipsBlankFormatLabel(t *testing.T) {
	page := listingPageHTML([]string{
		productRowHTML("Partially Labelled", [][2]string{
			{"PDF", "/d/1/pdf"},
			{"  ", "/d/1/mystery"},
		}),
	}, false)

	server, _ := newListingServer([]string{page})
	defer server.Close()

	log := logger.NewTestLogger()
	client, err := NewClient(server.URL, log)
	require.NoError(t, err)

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, map[string]string{"pdf": "/d/1/pdf"}, products[0].Links)
	assert.True(t, log.HasMessageContaining("no format label"))
}

func TestFetchProductsDecodesDoubleEncodedTitles(t *testing.T) {
	// The raw HTML carries &amp;amp;: the parser's decode yields &amp;,
	// and the second decode recovers the literal ampersand.
	page := listingPageHTML([]string{
		productRowHTML("Tips &amp;amp; Tricks", [][2]string{{"PDF", "/d/1"}}),
	}, false)

	server, _ := newListingServer([]string{page})
	defer server.Close()

	client, err := NewClient(server.URL, logger.NewTestLogger())
	require.NoError(t, err)

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "Tips & Tricks", products[0].Title)
}

func TestFetchProductsLowercasesFormatLabels(t *testing.T) {
	page := listingPageHTML([]string{
		productRowHTML("Mixed Case", [][2]string{
			{"PDF", "/d/pdf"},
			{"ePub", "/d/epub"},
			{" MOBI ", "/d/mobi"},
		}),
	}, false)

	server, _ := newListingServer([]string{page})
	defer server.Close()

	client, err := NewClient(server.URL, logger.NewTestLogger())
	require.NoError(t, err)

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, []string{"epub", "mobi", "pdf"}, products[0].Formats())
}

func TestFetchProductsHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	server, counter := newListingServer(nil)
	defer server.Close()

	client, err := NewClient(server.URL, logger.NewTestLogger())
	require.NoError(t, err)

	products, err := client.FetchProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, products)
	assert.Equal(t, 0, counter.Total())
}
