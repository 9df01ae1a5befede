package social

import (
	"fmt"
	"net/http"
	"net/url"
)

const (
	instagramOAuthURL = "https://api.instagram.com/oauth/access_token"
	instagramGraphURL = "https://graph.instagram.com"
)

type instagramClient struct {
	clientID     string
	clientSecret string
	redirectURL  string
	httpClient   *http.Client
}

func NewInstagramClient(clientID, clientSecret, redirectURL string) Client {
	return &instagramClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		httpClient:   newHTTPClient(),
	}
}

func (c *instagramClient) Platform() string { return "instagram" }

func (c *instagramClient) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURL)
	q.Set("scope", "user_profile,user_media")
	q.Set("response_type", "code")
	q.Set("state", state)
	return "https://api.instagram.com/oauth/authorize?" + q.Encode()
}

func (c *instagramClient) ExchangeCode(code string) (*Token, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, fmt.Errorf("instagram app credentials not configured")
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", c.redirectURL)
	form.Set("code", code)

	var result struct {
		AccessToken string `json:"access_token"`
		UserID      int64  `json:"user_id"`
	}
	if err := postForm(c.httpClient, instagramOAuthURL, form, &result); err != nil {
		return nil, fmt.Errorf("instagram code exchange: %w", err)
	}
	return &Token{AccessToken: result.AccessToken}, nil
}

func (c *instagramClient) LongLivedToken(shortLived string) (*Token, error) {
	q := url.Values{}
	q.Set("grant_type", "ig_exchange_token")
	q.Set("client_secret", c.clientSecret)
	q.Set("access_token", shortLived)

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := getJSON(c.httpClient, instagramGraphURL+"/access_token?"+q.Encode(), &result); err != nil {
		return nil, fmt.Errorf("instagram long-lived token: %w", err)
	}
	return &Token{AccessToken: result.AccessToken, ExpiresIn: result.ExpiresIn}, nil
}

func (c *instagramClient) Account(accessToken string) (*Account, error) {
	q := url.Values{}
	q.Set("fields", "id,username")
	q.Set("access_token", accessToken)

	var result struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := getJSON(c.httpClient, instagramGraphURL+"/me?"+q.Encode(), &result); err != nil {
		return nil, fmt.Errorf("instagram account lookup: %w", err)
	}
	return &Account{ID: result.ID, Name: result.Username}, nil
}

func (c *instagramClient) Posts(accessToken, accountID, after string) ([]Post, string, error) {
	q := url.Values{}
	q.Set("fields", "id,caption,media_type,media_url,permalink,timestamp")
	q.Set("access_token", accessToken)
	q.Set("limit", "25")
	if after != "" {
		q.Set("after", after)
	}

	var result struct {
		Data   []Post `json:"data"`
		Paging struct {
			Cursors struct {
				After string `json:"after"`
			} `json:"cursors"`
			Next string `json:"next"`
		} `json:"paging"`
	}
	if err := getJSON(c.httpClient, instagramGraphURL+"/me/media?"+q.Encode(), &result); err != nil {
		return nil, "", fmt.Errorf("instagram media list: %w", err)
	}

	next := ""
	if result.Paging.Next != "" {
		next = result.Paging.Cursors.After
	}
	return result.Data, next, nil
}
