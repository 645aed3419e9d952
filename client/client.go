package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/memorymesh/core"
	"github.com/hupe1980/memorymesh/logging"
)

// DefaultAPIURL is the hosted service endpoint used when no override is set.
const DefaultAPIURL = "https://api.memphora.ai/api/v1"

var _ core.Backend = (*Client)(nil)

// Options configures a Client.
type Options struct {
	// APIURL overrides the service endpoint.
	APIURL string
	// HTTPClient is used for all requests (defaults to a client with a 30s timeout).
	HTTPClient *http.Client
	// Logger receives one debug entry per call (defaults to NoOpLogger).
	Logger logging.Logger
	// UserAgent is sent with every request.
	UserAgent string
}

// Client talks to the hosted memory service on behalf of one user.
type Client struct {
	userID  string
	apiKey  string
	baseURL string
	http    *http.Client
	logger  logging.Logger
	ua      string
}

// New creates a client for userID authenticated with apiKey.
func New(userID, apiKey string, optFns ...func(o *Options)) (*Client, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUserID
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	opts := Options{
		APIURL:    DefaultAPIURL,
		UserAgent: "memorymesh-go",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		userID:  userID,
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(opts.APIURL, "/"),
		http:    opts.HTTPClient,
		logger:  logging.OrNoOp(opts.Logger),
		ua:      opts.UserAgent,
	}, nil
}

// WithAPIURL overrides the service endpoint.
func WithAPIURL(u string) func(o *Options) {
	return func(o *Options) { o.APIURL = u }
}

// UserID returns the identifier every request is scoped to.
func (c *Client) UserID() string { return c.userID }

// do executes one JSON request. body may be nil; out may be nil.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) (err error) {
	start := time.Now()
	requestID := uuid.NewString()
	defer func() { logging.LogBackendCall(c.logger, op, time.Since(start), err, "request_id", requestID) }()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp, requestID)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// handleErrorResponse extracts an error message from non-2xx responses.
func (c *Client) handleErrorResponse(resp *http.Response, requestID string) error {
	body, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: requestID}

	var errResp struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &errResp) == nil && (errResp.Error != "" || errResp.Detail != "") {
		apiErr.Message = errResp.Error
		if apiErr.Message == "" {
			apiErr.Message = errResp.Detail
		}
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}
