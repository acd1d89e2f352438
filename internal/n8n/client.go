// Package n8n is a thin HTTP client for the automation backend's
// workflow catalog and webhook execution endpoints. It carries no
// business logic; provisioning decisions live in internal/core.
package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/flowgate/internal/model"
)

const apiKeyHeader = "X-N8N-API-KEY"

var (
	// ErrNotFound means the backend has no workflow at the requested
	// path or ID. On the webhook endpoint this is what drives lazy
	// provisioning.
	ErrNotFound = errors.New("workflow not found")

	// ErrTimeout means a backend call exceeded its deadline.
	ErrTimeout = errors.New("backend timeout")

	// ErrUnavailable means the backend could not be reached or answered
	// with a server error.
	ErrUnavailable = errors.New("backend unavailable")
)

// Client communicates with an n8n-compatible automation backend.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a backend client. Every request carries the given
// timeout; timeouts surface as ErrTimeout.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With().Str("component", "n8n-client").Logger(),
	}
}

// ExecuteByPath POSTs a payload to the webhook at the given canonical
// path. An optional bearer token is forwarded to the workflow. A 404
// from the backend surfaces as ErrNotFound.
func (c *Client) ExecuteByPath(ctx context.Context, path string, payload json.RawMessage, bearerToken string) (json.RawMessage, error) {
	reqURL := c.baseURL + "/webhook" + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("execute webhook request: %w", err)
	}
	c.setHeaders(req)
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportErr("execute webhook "+path, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("execute webhook %s: %w", path, ErrNotFound)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("execute webhook %s: %w: status %d: %s", path, ErrUnavailable, resp.StatusCode, string(body))
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("execute webhook %s: status %d: %s", path, resp.StatusCode, string(body))
	}

	if len(body) == 0 || !json.Valid(body) {
		// Some workflows respond with plain text or nothing at all.
		wrapped, _ := json.Marshal(map[string]string{"raw": string(body)})
		return wrapped, nil
	}
	return body, nil
}

// ListByTags fetches the workflows carrying the given catalog tag. The
// backend's tag filter is OR-based, so callers needing full tag-set
// containment filter the result themselves.
func (c *Client) ListByTags(ctx context.Context, tags ...string) ([]model.Workflow, error) {
	reqURL := fmt.Sprintf("%s/api/v1/workflows?tags=%s", c.baseURL, url.QueryEscape(strings.Join(tags, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("list workflows request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportErr("list workflows", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, c.statusErr("list workflows", resp.StatusCode, body)
	}

	var list listWorkflowsResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode workflow list: %w", err)
	}
	return list.Data, nil
}

// GetWorkflow fetches one workflow with its full node graph.
func (c *Client) GetWorkflow(ctx context.Context, id string) (*model.Workflow, error) {
	reqURL := fmt.Sprintf("%s/api/v1/workflows/%s", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("get workflow request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportErr("get workflow "+id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("get workflow %s: %w", id, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, c.statusErr("get workflow "+id, resp.StatusCode, body)
	}

	var wf model.Workflow
	if err := json.NewDecoder(resp.Body).Decode(&wf); err != nil {
		return nil, fmt.Errorf("decode workflow %s: %w", id, err)
	}
	return &wf, nil
}

// CreateWorkflow creates a new workflow from the given definition and
// returns it as stored, including its assigned ID.
func (c *Client) CreateWorkflow(ctx context.Context, wf *model.Workflow) (*model.Workflow, error) {
	body, err := json.Marshal(newCreateWorkflowRequest(wf))
	if err != nil {
		return nil, fmt.Errorf("marshal create workflow: %w", err)
	}

	reqURL := c.baseURL + "/api/v1/workflows"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create workflow request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportErr("create workflow "+wf.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, c.statusErr("create workflow "+wf.Name, resp.StatusCode, respBody)
	}

	var created model.Workflow
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decode created workflow: %w", err)
	}
	c.logger.Info().Str("workflow_id", created.ID).Str("name", created.Name).Msg("workflow created")
	return &created, nil
}

// UpdateWorkflow replaces a workflow's definition.
func (c *Client) UpdateWorkflow(ctx context.Context, id string, wf *model.Workflow) (*model.Workflow, error) {
	body, err := json.Marshal(newCreateWorkflowRequest(wf))
	if err != nil {
		return nil, fmt.Errorf("marshal update workflow: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/v1/workflows/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("update workflow request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportErr("update workflow "+id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("update workflow %s: %w", id, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, c.statusErr("update workflow "+id, resp.StatusCode, respBody)
	}

	var updated model.Workflow
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, fmt.Errorf("decode updated workflow: %w", err)
	}
	return &updated, nil
}

// Activate flips a workflow's active flag on.
func (c *Client) Activate(ctx context.Context, id string) error {
	reqURL := fmt.Sprintf("%s/api/v1/workflows/%s/activate", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		return fmt.Errorf("activate workflow request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportErr("activate workflow "+id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("activate workflow %s: %w", id, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return c.statusErr("activate workflow "+id, resp.StatusCode, body)
	}
	c.logger.Info().Str("workflow_id", id).Msg("workflow activated")
	return nil
}

// Ping checks backend reachability via its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("ping request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportErr("ping", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping: %w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
}

// transportErr maps transport failures onto the error taxonomy:
// deadline hits become ErrTimeout, everything else ErrUnavailable.
func (c *Client) transportErr(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %v", op, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

func (c *Client) statusErr(op string, status int, body []byte) error {
	if status >= 500 {
		return fmt.Errorf("%s: %w: status %d: %s", op, ErrUnavailable, status, string(body))
	}
	return fmt.Errorf("%s: status %d: %s", op, status, string(body))
}
