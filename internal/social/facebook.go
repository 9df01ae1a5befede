package social

import (
	"fmt"
	"net/http"
	"net/url"
)

const facebookGraphURL = "https://graph.facebook.com/v19.0"

type facebookClient struct {
	clientID     string
	clientSecret string
	redirectURL  string
	httpClient   *http.Client
}

func NewFacebookClient(clientID, clientSecret, redirectURL string) Client {
	return &facebookClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		httpClient:   newHTTPClient(),
	}
}

func (c *facebookClient) Platform() string { return "facebook" }

func (c *facebookClient) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURL)
	q.Set("scope", "pages_show_list,pages_read_engagement")
	q.Set("response_type", "code")
	q.Set("state", state)
	return "https://www.facebook.com/v19.0/dialog/oauth?" + q.Encode()
}

func (c *facebookClient) ExchangeCode(code string) (*Token, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, fmt.Errorf("facebook app credentials not configured")
	}

	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("client_secret", c.clientSecret)
	q.Set("redirect_uri", c.redirectURL)
	q.Set("code", code)

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := getJSON(c.httpClient, facebookGraphURL+"/oauth/access_token?"+q.Encode(), &result); err != nil {
		return nil, fmt.Errorf("facebook code exchange: %w", err)
	}
	return &Token{AccessToken: result.AccessToken, ExpiresIn: result.ExpiresIn}, nil
}

func (c *facebookClient) LongLivedToken(shortLived string) (*Token, error) {
	q := url.Values{}
	q.Set("grant_type", "fb_exchange_token")
	q.Set("client_id", c.clientID)
	q.Set("client_secret", c.clientSecret)
	q.Set("fb_exchange_token", shortLived)

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := getJSON(c.httpClient, facebookGraphURL+"/oauth/access_token?"+q.Encode(), &result); err != nil {
		return nil, fmt.Errorf("facebook long-lived token: %w", err)
	}
	return &Token{AccessToken: result.AccessToken, ExpiresIn: result.ExpiresIn}, nil
}

// Account resolves the first page the user manages; the PTO connects its own
// page, so one is enough.
func (c *facebookClient) Account(accessToken string) (*Account, error) {
	q := url.Values{}
	q.Set("fields", "id,name")
	q.Set("access_token", accessToken)

	var result struct {
		Data []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := getJSON(c.httpClient, facebookGraphURL+"/me/accounts?"+q.Encode(), &result); err != nil {
		return nil, fmt.Errorf("facebook pages lookup: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("no facebook pages available for this account")
	}
	return &Account{ID: result.Data[0].ID, Name: result.Data[0].Name}, nil
}

func (c *facebookClient) Posts(accessToken, accountID, after string) ([]Post, string, error) {
	q := url.Values{}
	q.Set("fields", "id,name,source,link,created_time")
	q.Set("type", "uploaded")
	q.Set("access_token", accessToken)
	q.Set("limit", "25")
	if after != "" {
		q.Set("after", after)
	}

	var result struct {
		Data []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			Source      string `json:"source"`
			Link        string `json:"link"`
			CreatedTime string `json:"created_time"`
		} `json:"data"`
		Paging struct {
			Cursors struct {
				After string `json:"after"`
			} `json:"cursors"`
			Next string `json:"next"`
		} `json:"paging"`
	}
	if err := getJSON(c.httpClient, facebookGraphURL+"/"+accountID+"/photos?"+q.Encode(), &result); err != nil {
		return nil, "", fmt.Errorf("facebook photos list: %w", err)
	}

	posts := make([]Post, 0, len(result.Data))
	for _, item := range result.Data {
		posts = append(posts, Post{
			ID:        item.ID,
			Caption:   item.Name,
			MediaType: "IMAGE",
			MediaURL:  item.Source,
			Permalink: item.Link,
			Timestamp: item.CreatedTime,
		})
	}

	next := ""
	if result.Paging.Next != "" {
		next = result.Paging.Cursors.After
	}
	return posts, next, nil
}
