package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultBrevoAPIURL = "https://api.brevo.com/v3/smtp/email"

// BrevoClient delivers mail through the Brevo transactional email API.
type BrevoClient struct {
	apiKey     string
	apiURL     string
	fromEmail  string
	fromName   string
	confirmURL string
	httpClient *http.Client
}

type BrevoOption func(*BrevoClient)

// WithBrevoAPIURL overrides the API endpoint, used by tests to point the
// client at a local server.
func WithBrevoAPIURL(url string) BrevoOption {
	return func(c *BrevoClient) {
		if url != "" {
			c.apiURL = url
		}
	}
}

// WithBrevoHTTPClient overrides the underlying HTTP client.
func WithBrevoHTTPClient(client *http.Client) BrevoOption {
	return func(c *BrevoClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewBrevoClient creates a Brevo backed mailer. confirmURL is the public
// base of the confirmation endpoint; the signed token is appended to it.
func NewBrevoClient(apiKey, fromEmail, fromName, confirmURL string, opts ...BrevoOption) *BrevoClient {
	c := &BrevoClient{
		apiKey:     apiKey,
		apiURL:     defaultBrevoAPIURL,
		fromEmail:  fromEmail,
		fromName:   fromName,
		confirmURL: confirmURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

type sendEmailReq struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HtmlContent string              `json:"htmlContent"`
}

func (c *BrevoClient) SendVerificationEmail(ctx context.Context, email, token string) error {
	if email == "" || token == "" {
		return errors.New("email and token cannot be empty")
	}

	link := ConfirmLink(c.confirmURL, token)
	html := fmt.Sprintf(`<p>Welcome! Click the link below to confirm your address.</p><p><a href=%q>Confirm your email</a></p>`, link)

	reqBody := sendEmailReq{
		Sender:      map[string]string{"email": c.fromEmail, "name": c.fromName},
		To:          []map[string]string{{"email": email}},
		Subject:     "Please confirm your email",
		HtmlContent: html,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal email request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}

	httpReq.Header.Set("api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("email delivery request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorBody map[string]any
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errorBody); decodeErr != nil {
			return fmt.Errorf("email API error: status %d", resp.StatusCode)
		}
		return fmt.Errorf("email API error: status %d, body: %v", resp.StatusCode, errorBody)
	}

	return nil
}

var _ Mailer = (*BrevoClient)(nil)
