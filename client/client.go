// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/featurevotes/models"
)

// DefaultBaseURL is the API location baked into the binary. Override at
// build time with
//
//	-ldflags "-X github.com/danielhkuo/featurevotes/client.DefaultBaseURL=https://api.example.com"
var DefaultBaseURL = "http://localhost:4000"

// EnvBaseURL overrides DefaultBaseURL at run time.
const EnvBaseURL = "FEATUREVOTES_API_URL"

// DefaultTimeout bounds every request made with the default HTTP client.
const DefaultTimeout = 10 * time.Second

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets callers match on ErrNotFound and ErrValidation.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrValidation:
		return e.StatusCode == http.StatusBadRequest
	}
	return false
}

// ResolveBaseURL picks the first non-empty of the explicit value, the
// environment override and DefaultBaseURL.
func ResolveBaseURL(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvBaseURL); env != "" {
		return env
	}
	return DefaultBaseURL
}

type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: "featurevotes-client",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL reports the API root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListFeatures fetches every feature in server order (votes desc).
func (c *Client) ListFeatures(ctx context.Context) ([]models.Feature, error) {
	var features []models.Feature
	if err := c.do(ctx, http.MethodGet, "/features", nil, &features, "Failed to fetch features"); err != nil {
		return nil, err
	}
	if features == nil {
		features = []models.Feature{}
	}
	return features, nil
}

// CreateFeature submits a new feature and returns the stored record.
func (c *Client) CreateFeature(ctx context.Context, title string) (models.Feature, error) {
	var f models.Feature
	req := models.CreateFeatureRequest{Title: title}
	if err := c.do(ctx, http.MethodPost, "/features", req, &f, "Failed to create feature"); err != nil {
		return models.Feature{}, err
	}
	return f, nil
}

// UpvoteFeature adds one vote and returns the updated record.
func (c *Client) UpvoteFeature(ctx context.Context, id int64) (models.Feature, error) {
	var f models.Feature
	path := "/features/" + strconv.FormatInt(id, 10) + "/upvote"
	if err := c.do(ctx, http.MethodPost, path, nil, &f, "Failed to upvote feature"); err != nil {
		return models.Feature{}, err
	}
	return f, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}, failure string) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", failure, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", failure, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		// Surface cancellation unchanged so callers can tell it apart
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s: %w", failure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body, failure)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s: decode response: %w", failure, err)
	}
	return nil
}

// errorMessage prefers the server's {"error": "..."} text.
func errorMessage(r io.Reader, fallback string) string {
	var e models.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&e); err != nil || e.Error == "" {
		return fallback
	}
	return e.Error
}
