package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"memoreal/internal/models"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "MEMOREAL_HTTP_TIMEOUT"
	apiTokenEnvKey     = "MEMOREAL_API_TOKEN"
)

// Client is a simple HTTP client for the memoreal API.
type Client struct {
	baseURL   string
	http      *http.Client
	authToken string
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: httpTimeoutFromEnv()},
		authToken: strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) GetInfo(ctx context.Context) (InfoResponse, error) {
	var resp InfoResponse
	err := c.do(ctx, http.MethodGet, "/v1/info", nil, nil, &resp)
	return resp, err
}

func (c *Client) CreateCapsule(ctx context.Context, req CapsuleCreateRequest) (CapsuleSummary, error) {
	var resp CapsuleSummary
	err := c.do(ctx, http.MethodPost, "/v1/capsules", nil, req, &resp)
	return resp, err
}

func (c *Client) GetCapsule(ctx context.Context, id string) (CapsuleSummary, error) {
	var resp CapsuleSummary
	err := c.do(ctx, http.MethodGet, capsulePath(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) ListCapsules(ctx context.Context, query url.Values) ([]CapsuleSummary, error) {
	var resp []CapsuleSummary
	err := c.do(ctx, http.MethodGet, "/v1/capsules", query, nil, &resp)
	return resp, err
}

// ViewCapsule reveals capsule content. location may be nil.
func (c *Client) ViewCapsule(ctx context.Context, id string, location *string) (models.CapsuleContent, error) {
	var resp models.CapsuleContent
	err := c.do(ctx, http.MethodPost, capsulePath(id)+"/view", nil, CapsuleViewRequest{Location: location}, &resp)
	return resp, err
}

func (c *Client) IsUnlockable(ctx context.Context, id string) (UnlockableResponse, error) {
	var resp UnlockableResponse
	err := c.do(ctx, http.MethodGet, capsulePath(id)+"/unlockable", nil, nil, &resp)
	return resp, err
}

func (c *Client) MintCapsule(ctx context.Context, id string, req MintRequest) (models.MintReceipt, error) {
	var resp models.MintReceipt
	err := c.do(ctx, http.MethodPost, capsulePath(id)+"/mint", nil, req, &resp)
	return resp, err
}

func (c *Client) MintState(ctx context.Context, id string) (MintStateResponse, error) {
	var resp MintStateResponse
	err := c.do(ctx, http.MethodGet, capsulePath(id)+"/mint", nil, nil, &resp)
	return resp, err
}

func capsulePath(id string) string {
	return "/v1/capsules/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		return &APIError{
			Status:    resp.StatusCode,
			Code:      errResp.Code,
			ErrorCode: errResp.ErrorCode,
			Message:   errResp.Error,
		}
	}
	return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("api error: %s", resp.Status)}
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.authToken == "" || req == nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
