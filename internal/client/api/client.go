// Package api is the HTTP client for the vault server's JSON API. It
// speaks the same endpoints the browser extension uses and maps HTTP
// statuses back to the package's error values.
package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/securepass/vault/internal/common"
)

// Client talks to the vault server. The bearer token set by SetToken is
// attached to every subsequent request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken stores the session token used on authenticated endpoints.
func (c *Client) SetToken(token string) {
	c.token = token
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type Credential struct {
	ID        string    `json:"id"`
	Domain    string    `json:"domain"`
	Username  string    `json:"username"`
	Secret    string    `json:"secret"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BackupUpload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// do performs one request and decodes the JSON response into out (when
// non-nil). Transport failures map to ErrUnavailable, auth failures to
// ErrUnauthorized.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthHeaderName, "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusConflict:
		return ErrConflict
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error: %s; body: %s", resp.Status, string(b))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Register(ctx context.Context, name, email string, password []byte) (*AuthResult, error) {
	req := map[string]string{"name": name, "email": email, "password": string(password)}
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/register", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Login(ctx context.Context, email string, password []byte) (*AuthResult, error) {
	req := map[string]string{"email": email, "password": string(password)}
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/login", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

// GetSalt fetches the key-derivation salt registered for email.
func (c *Client) GetSalt(ctx context.Context, email string) ([]byte, error) {
	var resp struct {
		Salt string `json:"salt"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/salt?email="+url.QueryEscape(email), nil, &resp); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(resp.Salt)
}

func (c *Client) CreateCredential(ctx context.Context, domain, username, envelope string) (*Credential, error) {
	req := map[string]string{"domain": domain, "username": username, "secret": envelope}
	var result Credential
	if err := c.do(ctx, http.MethodPost, "/api/passwords", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListCredentials(ctx context.Context) ([]Credential, error) {
	var result []Credential
	if err := c.do(ctx, http.MethodGet, "/api/passwords", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetCredential(ctx context.Context, domain string) (*Credential, error) {
	var result Credential
	if err := c.do(ctx, http.MethodGet, "/api/passwords/"+domain, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteCredential(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/passwords/id/"+id, nil, nil)
}

func (c *Client) PresignBackupUpload(ctx context.Context) (*BackupUpload, error) {
	var result BackupUpload
	if err := c.do(ctx, http.MethodPost, "/api/backups", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) PresignBackupDownload(ctx context.Context, key string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/backups/"+key, nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
