package social

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Token is an access token returned by a platform. ExpiresIn is seconds from
// now; long-lived tokens run about 60 days.
type Token struct {
	AccessToken string
	ExpiresIn   int64
}

// Account identifies the connected account or page.
type Account struct {
	ID   string
	Name string
}

// Post is one media item from the platform feed.
type Post struct {
	ID        string `json:"id"`
	Caption   string `json:"caption"`
	MediaType string `json:"media_type"`
	MediaURL  string `json:"media_url"`
	Permalink string `json:"permalink"`
	Timestamp string `json:"timestamp"`
}

// Client is the platform-independent shape of both OAuth flows: exchange the
// authorization code, upgrade to a long-lived token, resolve the account
// identity, and page through posts.
type Client interface {
	Platform() string
	AuthorizeURL(state string) string
	ExchangeCode(code string) (*Token, error)
	LongLivedToken(shortLived string) (*Token, error)
	Account(accessToken string) (*Account, error)
	Posts(accessToken, accountID, after string) ([]Post, string, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 20 * time.Second}
}

// getJSON issues a GET and decodes the JSON body into out, surfacing
// non-2xx bodies as errors.
func getJSON(httpClient *http.Client, rawURL string, out interface{}) error {
	resp, err := httpClient.Get(rawURL)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("platform API error (status %d): %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}

// postForm issues a form POST and decodes the JSON body into out.
func postForm(httpClient *http.Client, rawURL string, form url.Values, out interface{}) error {
	resp, err := httpClient.PostForm(rawURL, form)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("platform API error (status %d): %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}
