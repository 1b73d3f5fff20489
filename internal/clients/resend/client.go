package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Resend transactional email API.
type Client struct {
	httpClient  HTTPClient
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
}

type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{},
		apiKey:     apiKey,
		baseURL:    "https://api.resend.com",
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

// Send dispatches one email and returns the provider-assigned message id.
func (c *Client) Send(ctx context.Context, message Message) (string, error) {

	if message.From == "" || len(message.To) == 0 || message.Subject == "" {
		return "", errors.New("message is missing from, to or subject")
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	body, err := json.Marshal(message)
	if err != nil {
		return "", errors.Wrap(err, "error encoding message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "error creating request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "error sending request")
	}
	defer resp.Body.Close()

	var decoded sendResponse
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Errorf("send failed with status %v", resp.StatusCode)
	}
	if err = json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errors.Wrap(err, "error decoding JSON response")
	}

	return decoded.ID, nil
}
