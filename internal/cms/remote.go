package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"peptidology.com/storefront/internal/fields"
)

// Client reads field sets from a remote CMS endpoint:
//
//	GET {base}/fields/{scope} -> {"scope": "...", "fields": {...}}
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a Client with the provided base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Fields implements Store.
func (c *Client) Fields(ctx context.Context, scope fields.Scope) (fields.Set, error) {
	if c == nil || c.baseURL == "" {
		return fields.Set{}, ErrNotFound
	}
	endpoint, err := url.JoinPath(c.baseURL, "fields", string(scope))
	if err != nil {
		return fields.Set{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fields.Set{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fields.Set{}, fmt.Errorf("cms: fetch %s: %w", scope, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fields.Set{}, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return fields.Set{}, fmt.Errorf("cms: fields remote status %d", resp.StatusCode)
	}

	var payload struct {
		Scope  string         `json:"scope"`
		Fields map[string]any `json:"fields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fields.Set{}, fmt.Errorf("cms: decode %s: %w", scope, err)
	}
	if payload.Scope != "" && payload.Scope != string(scope) {
		return fields.Set{}, fmt.Errorf("cms: remote returned scope %q for %q", payload.Scope, scope)
	}
	return fields.New(payload.Fields), nil
}
