package miro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the production Miro REST API endpoint.
const DefaultBaseURL = "https://api.miro.com"

const requestTimeout = 30 * time.Second

// Sentinel errors for API failures callers may want to branch on.
var (
	// ErrUnauthorized indicates Miro rejected the bearer token
	ErrUnauthorized = fmt.Errorf("miro rejected the access token")

	// ErrNotFound indicates the requested board does not exist or the
	// token's team cannot see it
	ErrNotFound = fmt.Errorf("board not found")
)

// Client calls the Miro REST API v2.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Intended for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Miro API client. A nil logger falls back to
// slog.Default().
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListBoards returns one page of boards visible to the token's team.
// limit <= 0 lets the API pick its default page size; cursor resumes a
// previous page.
func (c *Client) ListBoards(ctx context.Context, token string, limit int, cursor string) (*BoardsPage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	endpoint := c.baseURL + "/v2/boards"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var page BoardsPage
	if err := c.do(ctx, token, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetBoard fetches a single board by ID.
func (c *Client) GetBoard(ctx context.Context, token, boardID string) (*Board, error) {
	if boardID == "" {
		return nil, fmt.Errorf("board ID is required")
	}

	endpoint := c.baseURL + "/v2/boards/" + url.PathEscape(boardID)

	var board Board
	if err := c.do(ctx, token, http.MethodGet, endpoint, nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// CreateBoard creates a new board owned by the token's user.
func (c *Client) CreateBoard(ctx context.Context, token string, req CreateBoardRequest) (*Board, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("board name is required")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board request: %w", err)
	}

	endpoint := c.baseURL + "/v2/boards"

	var board Board
	if err := c.do(ctx, token, http.MethodPost, endpoint, body, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// do performs one API request, decoding a 2xx body into out and mapping
// error statuses onto sentinel errors where useful.
func (c *Client) do(ctx context.Context, token, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("miro request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode miro response: %w", err)
		}
		return nil
	}

	var apiErr apiError
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)

	c.logger.Debug("miro API error",
		"method", method,
		"status", resp.StatusCode,
		"code", apiErr.Code)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)
	case http.StatusNotFound:
		return ErrNotFound
	}

	if apiErr.Message != "" {
		return fmt.Errorf("miro API error (status %d): %s", resp.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("miro API error (status %d)", resp.StatusCode)
}
