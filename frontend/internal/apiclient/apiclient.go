package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/itchan-dev/parley/shared/api"
	internal_errors "github.com/itchan-dev/parley/shared/errors"
	"github.com/itchan-dev/parley/shared/middleware"
)

// APIClient talks to the backend. The session cookie lives in the client's
// jar, so one APIClient is one signed-in user.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
	// SendHistory attaches earlier messages to chat requests. The backend
	// drops them unless it is configured to use history.
	SendHistory bool

	base *url.URL
}

func New(baseURL string) (*APIClient, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &APIClient{
		BaseURL:    base.String(),
		HttpClient: &http.Client{Jar: jar},
		base:       base,
	}, nil
}

// do is the single helper every request goes through.
func (c *APIClient) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}
	return resp, nil
}

// SessionCookie returns the session cookie the jar holds for the backend.
func (c *APIClient) SessionCookie() *http.Cookie {
	if c.HttpClient.Jar == nil {
		return nil
	}
	for _, cookie := range c.HttpClient.Jar.Cookies(c.base) {
		if cookie.Name == middleware.SessionCookieName {
			return cookie
		}
	}
	return nil
}

func (c *APIClient) LoggedIn() bool {
	return c.SessionCookie() != nil
}

// errorFromResponse turns a non-2xx JSON envelope into an ErrorWithStatusCode.
func errorFromResponse(resp *http.Response) error {
	var body api.OkResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err != nil || body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	return internal_errors.New(resp.StatusCode, body.Error)
}
