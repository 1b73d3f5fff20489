package gcal

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
)

var (
	// ErrNotConnected means the HR never linked a calendar or the link was revoked.
	ErrNotConnected = errors.New("calendar is not connected")
	// ErrInvalidGrant means the stored refresh token is no longer accepted by the provider.
	ErrInvalidGrant = errors.New("calendar refresh token was revoked")
)

type Credentials struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// CredentialStore persists per-HR calendar tokens. Replace must keep the
// stored refresh token when the rotated pair carries an empty one, since
// the provider does not rotate it on every refresh.
type CredentialStore interface {
	Get(ctx context.Context, hrID int) (Credentials, error)
	Replace(ctx context.Context, hrID int, creds Credentials) error
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	httpClient  HTTPClient
	credentials CredentialStore
	oauth       oauth2.Config
	rateLimiter *rate.Limiter
	baseURL     string
	hrLocks     sync.Map
}

func NewClient(credentials CredentialStore, clientID, clientSecret string) *Client {
	return &Client{
		httpClient:  &http.Client{},
		credentials: credentials,
		oauth: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
		},
		baseURL: "https://www.googleapis.com/calendar/v3",
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

func (c *Client) SetTokenURL(url string) {
	c.oauth.Endpoint = oauth2.Endpoint{TokenURL: url}
}

// freshToken returns a usable access token for the HR, refreshing through the
// provider when the stored one expired. Refresh-then-persist is serialized per
// HR so two concurrent scheduling operations can't overwrite a newly rotated
// refresh token with a stale pair.
func (c *Client) freshToken(ctx context.Context, hrID int) (string, error) {

	lock := c.lockFor(hrID)
	lock.Lock()
	defer lock.Unlock()

	creds, err := c.credentials.Get(ctx, hrID)
	if err != nil {
		return "", err
	}

	current := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.Expiry,
	}
	if current.Valid() {
		return current.AccessToken, nil
	}

	refreshCtx := context.WithValue(ctx, oauth2.HTTPClient, c.refreshHTTPClient())
	token, err := c.oauth.TokenSource(refreshCtx, current).Token()
	if err != nil {
		if isInvalidGrant(err) {
			return "", ErrInvalidGrant
		}
		return "", errors.Wrap(err, "token refresh failed")
	}

	rotated := Credentials{AccessToken: token.AccessToken, Expiry: token.Expiry}
	if token.RefreshToken != creds.RefreshToken {
		rotated.RefreshToken = token.RefreshToken
	}
	if err = c.credentials.Replace(ctx, hrID, rotated); err != nil {
		return "", errors.Wrap(err, "failed to persist rotated credentials")
	}

	return token.AccessToken, nil
}

func (c *Client) lockFor(hrID int) *sync.Mutex {
	lock, _ := c.hrLocks.LoadOrStore(hrID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// The token exchange needs a raw *http.Client; a custom transport installed
// for API mocking must not intercept it.
func (c *Client) refreshHTTPClient() *http.Client {
	if client, ok := c.httpClient.(*http.Client); ok {
		return client
	}
	return http.DefaultClient
}

func isInvalidGrant(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return retrieveErr.ErrorCode == "invalid_grant"
	}
	return false
}

func (c *Client) sendRequest(ctx context.Context, method string, url string, token string, body io.Reader) ([]byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Wrap(err, "error creating request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "error sending request")
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "error reading response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("request failed with status %v, body: %v", resp.StatusCode, string(body))
	}

	return body, nil
}
