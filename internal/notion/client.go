// Package notion persists summary documents as pages in a Notion database.
//
// The Client wraps the REST API surface the writer needs: page creation and
// block-children appends. Conversion from Markdown to blocks lives in
// blocks.go; chunking policy lives in writer.go.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout      = 30 * time.Second
	baseURL             = "https://api.notion.com/v1"
	apiVersion          = "2022-06-28"
	contentTypeJSON     = "application/json"
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	headerVersion       = "Notion-Version"
	maxResponseBodySize = 4 * 1024 * 1024 // 4MB
	errBodyReadLimit    = 1024
	errStatusBodyFmt    = "%w: status %d, body: %s"
	errStatusFmt        = "%w: status %d"
)

// Errors returned by the client.
var (
	// ErrClientDisabled indicates the client has no credentials configured.
	ErrClientDisabled = errors.New("notion client disabled")

	// ErrServerError indicates a non-2xx API response.
	ErrServerError = errors.New("notion server error")
)

// Config configures the Notion client.
type Config struct {
	Token      string
	DatabaseID string
	BaseURL    string // override for tests
	Timeout    time.Duration
}

// Client calls the Notion REST API.
type Client struct {
	baseURL    string
	token      string
	databaseID string
	httpClient *http.Client
	enabled    bool
}

// New creates a Notion client. Missing credentials yield a disabled client
// whose calls return ErrClientDisabled without touching the network.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	base := cfg.BaseURL
	if base == "" {
		base = baseURL
	}

	return &Client{
		baseURL:    base,
		token:      cfg.Token,
		databaseID: cfg.DatabaseID,
		enabled:    cfg.Token != "" && cfg.DatabaseID != "",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Enabled returns whether the client has credentials.
func (c *Client) Enabled() bool {
	return c.enabled
}

// PageRef identifies a created page.
type PageRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreatePage creates a database page with a title property and initial
// children blocks. databaseID overrides the configured database when
// non-empty, for channels routed to their own database.
func (c *Client) CreatePage(ctx context.Context, databaseID, title string, children []Block) (PageRef, error) {
	if !c.enabled {
		return PageRef{}, ErrClientDisabled
	}

	if databaseID == "" {
		databaseID = c.databaseID
	}

	payload := map[string]interface{}{
		"parent": map[string]string{"database_id": databaseID},
		"properties": map[string]interface{}{
			"title": map[string]interface{}{
				"title": []RichText{NewText(title)},
			},
		},
		"children": children,
	}

	var ref PageRef
	if err := c.post(ctx, "/pages", payload, &ref); err != nil {
		return PageRef{}, err
	}

	return ref, nil
}

// AppendChildren appends blocks to an existing page or block.
func (c *Client) AppendChildren(ctx context.Context, blockID string, children []Block) error {
	if !c.enabled {
		return ErrClientDisabled
	}

	payload := map[string]interface{}{"children": children}

	return c.patch(ctx, "/blocks/"+blockID+"/children", payload)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	return c.send(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) patch(ctx context.Context, path string, payload interface{}) error {
	return c.send(ctx, http.MethodPatch, path, payload, nil)
}

func (c *Client) send(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set(headerAuthorization, "Bearer "+c.token)
	req.Header.Set(headerVersion, apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, errBodyReadLimit))
		if readErr != nil {
			return fmt.Errorf(errStatusFmt, ErrServerError, resp.StatusCode)
		}

		return fmt.Errorf(errStatusBodyFmt, ErrServerError, resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	return nil
}
