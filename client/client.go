package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	wa "github.com/panyam/webauth"
)

// AuthClient talks to the auth API as a browser would, keeping the session
// cookie in a cookie jar between calls
type AuthClient struct {
	serverURL  string
	httpClient *http.Client
}

// APIError is a non success response from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed: HTTP %d", e.Status)
	}
	return fmt.Sprintf("request failed: HTTP %d: %s", e.Status, e.Message)
}

type userResponse struct {
	Message         string         `json:"message"`
	IsAuthenticated *bool          `json:"isAuthenticated,omitempty"`
	User            *wa.PublicUser `json:"user,omitempty"`
}

// ClientOption configures an AuthClient
type ClientOption func(*AuthClient)

// WithHTTPClient sets a custom base HTTP client (for timeouts, TLS config, etc.)
// The client is copied, so giving a cookie jar to the copy never touches the
// caller's client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *AuthClient) {
		if client != nil {
			cp := *client
			c.httpClient = &cp
		}
	}
}

// WithTransport sets a custom base transport (for connection pooling, proxies, etc.)
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(c *AuthClient) {
		cp := *c.httpClient
		cp.Transport = transport
		c.httpClient = &cp
	}
}

// NewAuthClient creates a client for the server at serverURL
func NewAuthClient(serverURL string, opts ...ClientOption) *AuthClient {
	// Normalize server URL
	u, err := url.Parse(serverURL)
	if err == nil && u.Scheme != "" && u.Host != "" {
		serverURL = fmt.Sprintf("%s://%s", u.Scheme, u.Host)
	}

	c := &AuthClient{
		serverURL:  serverURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		// cookiejar.New only fails on a bad public suffix list
		c.httpClient.Jar, _ = cookiejar.New(nil)
	}
	return c
}

// HTTPClient returns the underlying HTTP client, which carries the session cookie
func (c *AuthClient) HTTPClient() *http.Client {
	return c.httpClient
}

// ServerURL returns the server URL this client is configured for
func (c *AuthClient) ServerURL() string {
	return c.serverURL
}

// Register creates an account and leaves the client logged in as it
func (c *AuthClient) Register(ctx context.Context, name, email, password string) (*wa.PublicUser, error) {
	var resp userResponse
	err := c.call(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Login authenticates with email and password
func (c *AuthClient) Login(ctx context.Context, email, password string) (*wa.PublicUser, error) {
	var resp userResponse
	err := c.call(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout ends the server side session
func (c *AuthClient) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/api/auth/logout", nil, nil)
}

// CurrentUser returns the logged in user, or nil when the session is anonymous
func (c *AuthClient) CurrentUser(ctx context.Context) (*wa.PublicUser, error) {
	var resp userResponse
	err := c.call(ctx, http.MethodGet, "/api/auth/current-user", nil, &resp)
	if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusUnauthorized {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Profile fetches the protected profile resource
func (c *AuthClient) Profile(ctx context.Context) (*wa.PublicUser, error) {
	var resp userResponse
	if err := c.call(ctx, http.MethodGet, "/api/profile", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// IsLoggedIn returns true if the server still accepts our session
func (c *AuthClient) IsLoggedIn(ctx context.Context) bool {
	user, err := c.CurrentUser(ctx)
	return err == nil && user != nil
}

func (c *AuthClient) call(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		jsonBody, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var errResp userResponse
		json.Unmarshal(data, &errResp)
		return &APIError{Status: resp.StatusCode, Message: errResp.Message}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("invalid response from server: %w", err)
		}
	}
	return nil
}
