package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message is one transactional email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends transactional email. Delivery is best-effort: callers log
// failures and move on, they never roll back the record that triggered the
// send.
type Mailer interface {
	Send(msg Message) error
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendClient struct {
	apiKey     string
	from       string
	baseURL    string
	httpClient *http.Client
}

// NewResendClient returns a Mailer backed by the Resend REST API.
func NewResendClient(apiKey, from string) Mailer {
	return &resendClient{
		apiKey:     apiKey,
		from:       from,
		baseURL:    "https://api.resend.com",
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *resendClient) Send(msg Message) error {
	if c.apiKey == "" {
		return fmt.Errorf("resend API key not configured")
	}

	body, err := json.Marshal(resendRequest{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("marshal email request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/emails", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}
