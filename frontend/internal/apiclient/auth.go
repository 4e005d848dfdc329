package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/itchan-dev/parley/shared/api"
)

// Login signs in and returns the cookies the backend set, which the client
// also keeps in its jar. Rejections come back as ErrorWithStatusCode.
func (c *APIClient) Login(ctx context.Context, email, password string) ([]*http.Cookie, error) {
	jsonBody, err := json.Marshal(api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal login data: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/login", "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}
	return resp.Cookies(), nil
}

func (c *APIClient) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/logout", "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorFromResponse(resp)
	}
	return nil
}
