package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// Client talks to an OpenAI-compatible model service over HTTP. It holds
// no per-session state and is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the given API base URL (for example
// https://api.openai.com/v1).
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// MintRealtimeSession requests an ephemeral client secret for one
// realtime session, embedding the interview instructions and the
// evaluation tool schema.
func (c *Client) MintRealtimeSession(ctx context.Context, req *RealtimeSessionRequest) (*RealtimeGrant, error) {
	payload := map[string]any{
		"expires_after": map[string]any{
			"anchor":  "created_at",
			"seconds": req.ExpiresSeconds,
		},
		"session": map[string]any{
			"type":         "realtime",
			"model":        req.Model,
			"instructions": req.Instructions,
			"tools":        req.Tools,
		},
	}

	body, err := c.post(ctx, "/realtime/client_secrets", payload)
	if err != nil {
		return nil, err
	}

	secret := gjson.GetBytes(body, "value").String()
	if secret == "" {
		// Older API revisions nest the secret.
		secret = gjson.GetBytes(body, "client_secret.value").String()
	}
	if secret == "" {
		return nil, fmt.Errorf("realtime session response carries no client secret")
	}

	grant := &RealtimeGrant{
		ClientSecret: secret,
		Model:        req.Model,
	}
	if exp := gjson.GetBytes(body, "expires_at").Int(); exp > 0 {
		grant.ExpiresAt = time.Unix(exp, 0)
	}

	c.logger.Info("realtime session minted", "model", req.Model, "expires_at", grant.ExpiresAt)
	return grant, nil
}

// CompleteStructured performs exactly one completion constrained to the
// request's JSON schema and returns the raw conforming document. The
// caller owns parsing and validation; a refusal or an empty choice list
// is an error here.
func (c *Client) CompleteStructured(ctx context.Context, req *StructuredRequest) (json.RawMessage, error) {
	payload := map[string]any{
		"model": req.Model,
		"messages": []map[string]string{
			{"role": "system", "content": req.System},
			{"role": "user", "content": req.User},
		},
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   req.SchemaName,
				"strict": true,
				"schema": req.Schema,
			},
		},
	}

	body, err := c.post(ctx, "/chat/completions", payload)
	if err != nil {
		return nil, err
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode completion envelope: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion response has no choices")
	}
	if len(resp.Choices[0].Message.Refusal) > 0 && string(resp.Choices[0].Message.Refusal) != "null" {
		return nil, fmt.Errorf("model refused structured completion")
	}

	return json.RawMessage(resp.Choices[0].Message.Content), nil
}

// post sends one JSON request and returns the response body, treating any
// non-2xx status as an error carrying a body snippet for diagnosis.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, snippet)
	}

	return body, nil
}
