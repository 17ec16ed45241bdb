// Package ai calls an Ollama-compatible backend to elaborate a container
// inventory into prose. Every failure is typed so the pipeline can degrade
// to the deterministic report instead of failing the task.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FailureKind classifies why an enhancement attempt failed.
type FailureKind string

const (
	BackendUnreachable     FailureKind = "backend_unreachable"
	AuthenticationRejected FailureKind = "authentication_rejected"
	RateLimited            FailureKind = "rate_limited"
	EmptyResponse          FailureKind = "empty_response"
	Timeout                FailureKind = "timeout"
)

// Failure is the typed error returned by Enhance. Callers treat every kind
// the same way (fall back to the deterministic report) but surface the kind
// and detail in the task message.
type Failure struct {
	Kind   FailureKind
	Detail string
}

func (f *Failure) Error() string {
	if f.Detail == "" {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// Enhancer is the single-call LLM backend contract consumed by the task
// pipeline. Implementations return either generated markdown or a *Failure.
type Enhancer interface {
	Enhance(ctx context.Context, inventoryJSON string) (string, error)
}

// Client talks to an Ollama-compatible HTTP backend.
type Client struct {
	BaseURL string
	Model   string
	Token   string        // optional bearer token for proxied backends
	Timeout time.Duration // bound on one generation call

	HTTPClient *http.Client
}

func NewClient(baseURL, model, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
		Token:      token,
		Timeout:    timeout,
		HTTPClient: &http.Client{},
	}
}

const systemInstruction = "You are an infrastructure documentation assistant. " +
	"You produce precise, well-structured markdown reports about Docker containers " +
	"from raw inspect JSON. Never invent containers or fields that are not in the data."

// promptTemplate pins the structure of the generated report so repeated
// calls against the same inventory stay comparable.
const promptTemplate = `Create a comprehensive markdown report about the Docker containers in the JSON data below.

Start with a summary table with exactly these columns: Name | Short-ID | Image | Status | Ports | Networks | Mounts.
The Short-ID is the first 12 characters of the container id.

Then include sections for:
1. Executive Summary (count of containers, images used)
2. Detailed Container Information (one subsection per container)
3. Network Configuration
4. Volume Mounts
5. Resource Usage and Limits
6. Environment Variables

Use proper headings, tables, and code blocks where appropriate.

JSON data:
%s`

type generateRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Enhance sends the raw inventory to the backend and returns the generated
// markdown. Errors are always *Failure. Exactly one attempt; never retried.
func (c *Client) Enhance(ctx context.Context, inventoryJSON string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.Model,
		System: systemInstruction,
		Prompt: fmt.Sprintf(promptTemplate, inventoryJSON),
		Stream: false,
	})
	if err != nil {
		return "", &Failure{Kind: BackendUnreachable, Detail: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", &Failure{Kind: BackendUnreachable, Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &Failure{Kind: Timeout, Detail: fmt.Sprintf("no response within %s", c.Timeout)}
		}
		return "", &Failure{Kind: BackendUnreachable, Detail: err.Error()}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &Failure{Kind: AuthenticationRejected, Detail: resp.Status}
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &Failure{Kind: RateLimited, Detail: resp.Status}
	case resp.StatusCode != http.StatusOK:
		return "", &Failure{Kind: BackendUnreachable, Detail: "unexpected status " + resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &Failure{Kind: Timeout, Detail: fmt.Sprintf("no response within %s", c.Timeout)}
		}
		return "", &Failure{Kind: BackendUnreachable, Detail: err.Error()}
	}

	var gen generateResponse
	if err := json.Unmarshal(data, &gen); err != nil {
		return "", &Failure{Kind: BackendUnreachable, Detail: "malformed response: " + err.Error()}
	}
	if strings.TrimSpace(gen.Response) == "" {
		return "", &Failure{Kind: EmptyResponse, Detail: "backend returned no text"}
	}
	return gen.Response, nil
}

// Available probes the backend's model listing endpoint with a short
// deadline. Used for the status endpoint only; Enhance does its own probing
// implicitly by failing typed.
func (c *Client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
