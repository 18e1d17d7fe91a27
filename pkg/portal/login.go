package portal

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Login authenticates against the portal with a single attempt. It fetches
// the login page first to seed the session cookies, posts the credential
// form, and disambiguates the result from the final post-redirect URL.
//
// Landing back on the login page means the credentials were rejected. Any
// final URL other than the dashboard is treated as success with a warning;
// the portal has been seen redirecting fresh sessions to interstitial pages.
func (c *Client) Login(ctx context.Context, username, password string) (bool, error) {
	c.logger.InfoWithFields("authenticating with portal", map[string]interface{}{
		"username": username,
		"password": strings.Repeat("*", len(password)),
	})

	resp, err := c.Get(ctx, LoginURL(c.baseURL))
	if err != nil {
		return false, err
	}
	drain(resp)

	form := url.Values{}
	form.Set("login[username]", username)
	form.Set("login[password]", password)
	form.Set("send", "")

	resp, err = c.PostForm(ctx, LoginPostURL(c.baseURL), form)
	if err != nil {
		return false, err
	}
	drain(resp)

	finalURL := resp.Request.URL.String()

	switch finalURL {
	case LoginURL(c.baseURL):
		c.logger.Error("failed to authenticate with portal")
		return false, nil
	case DashboardURL(c.baseURL):
		c.logger.Debug("authenticated with portal")
		return true, nil
	default:
		c.logger.WarnWithFields("authenticated, but redirected to an unexpected page", map[string]interface{}{
			"url": finalURL,
		})
		return true, nil
	}
}

// drain consumes and closes a response body so the connection can be reused
func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
