package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"property-intake/internal/model"
)

// Client is the broker backend the intake flow runs against
type Client interface {
	CreateSession(ctx context.Context) (*model.CreateSessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*model.BrokerSession, error)
	SubmitAnswer(ctx context.Context, sessionID string, req model.SubmitAnswerRequest) (*model.BrokerSession, error)
	GetSummary(ctx context.Context, sessionID string) (model.SessionSummary, error)
	CreateLead(ctx context.Context, req model.CreateLeadRequest) (*model.Lead, error)
	GetLead(ctx context.Context, leadID string) (*model.Lead, error)
	ListLeads(ctx context.Context) ([]model.Lead, error)
	GetDistributions(ctx context.Context, location string) (*model.DistributionResponse, error)
}

// APIError is a non-2xx answer from the backend
type APIError struct {
	StatusCode int
	Detail     string
	Action     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("Failed to %s: %s", e.Action, http.StatusText(e.StatusCode))
}

// IsNotFound reports whether err is a backend 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// HTTPClient talks to the broker backend over REST
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for baseURL, e.g. http://localhost:8000
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *HTTPClient) CreateSession(ctx context.Context) (*model.CreateSessionResponse, error) {
	var result model.CreateSessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/broker_agent/sessions", struct{}{}, &result, "create session"); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, sessionID string) (*model.BrokerSession, error) {
	var result model.BrokerSession
	path := "/api/broker_agent/sessions/" + url.PathEscape(sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &result, "get current question"); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) SubmitAnswer(ctx context.Context, sessionID string, req model.SubmitAnswerRequest) (*model.BrokerSession, error) {
	var result model.BrokerSession
	path := "/api/broker_agent/sessions/" + url.PathEscape(sessionID) + "/answer"
	if err := c.do(ctx, http.MethodPost, path, req, &result, "submit answer"); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetSummary(ctx context.Context, sessionID string) (model.SessionSummary, error) {
	var result model.SessionSummary
	path := "/api/broker_agent/sessions/" + url.PathEscape(sessionID) + "/summary"
	if err := c.do(ctx, http.MethodGet, path, nil, &result, "get summary"); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) CreateLead(ctx context.Context, req model.CreateLeadRequest) (*model.Lead, error) {
	var result model.Lead
	if err := c.do(ctx, http.MethodPost, "/api/leads/create", req.Body(), &result, "create lead"); err != nil {
		return nil, err
	}
	normalizeLead(&result)
	return &result, nil
}

func (c *HTTPClient) GetLead(ctx context.Context, leadID string) (*model.Lead, error) {
	var result model.Lead
	if err := c.do(ctx, http.MethodGet, "/api/leads/"+url.PathEscape(leadID), nil, &result, "fetch lead"); err != nil {
		return nil, err
	}
	normalizeLead(&result)
	return &result, nil
}

// ListLeads accepts both a bare array and a {"leads": [...]} envelope
func (c *HTTPClient) ListLeads(ctx context.Context) ([]model.Lead, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/leads", nil, &raw, "fetch leads"); err != nil {
		return nil, err
	}
	return decodeLeadList(raw)
}

func (c *HTTPClient) GetDistributions(ctx context.Context, location string) (*model.DistributionResponse, error) {
	var result model.DistributionResponse
	path := "/api/distributions/localities?location=" + url.QueryEscape(location)
	if err := c.do(ctx, http.MethodGet, path, nil, &result, "fetch distributions"); err != nil {
		return nil, err
	}
	return &result, nil
}

// do sends a JSON request and decodes a 2xx body into out
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}, action string) error {
	var reader io.Reader
	if body != nil {
		reqBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(reqBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(respBody), Action: action}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// errorDetail extracts "detail" from an error body; non-string details are returned as raw JSON
func errorDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	if string(payload.Detail) == "null" {
		return ""
	}
	return string(payload.Detail)
}

func decodeLeadList(raw json.RawMessage) ([]model.Lead, error) {
	var leads []model.Lead
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &leads); err != nil {
			return nil, fmt.Errorf("failed to unmarshal leads: %w", err)
		}
	case len(trimmed) > 0 && trimmed[0] == '{':
		var envelope struct {
			Leads []model.Lead `json:"leads"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("failed to unmarshal leads: %w", err)
		}
		leads = envelope.Leads
	}

	if leads == nil {
		return []model.Lead{}, nil
	}
	for i := range leads {
		normalizeLead(&leads[i])
	}
	return leads, nil
}

func normalizeLead(l *model.Lead) {
	if l.ID == "" {
		l.ID = l.LeadID
	}
}
