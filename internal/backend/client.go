// Package backend talks to the chat endpoint that streams concatenated JSON
// objects back.
package backend

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

const (
	DefaultPath          = "/api/chat"
	DefaultQuestionField = "question"
)

type Config struct {
	BaseURL       string
	Path          string
	Token         string
	ChatbotID     string
	QuestionField string
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// Client posts a question to the chat endpoint and hands back the streamed
// response body.
type Client struct {
	endpoint      string
	token         string
	chatbotID     string
	questionField string
	httpClient    *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("chat base url is required")
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("chat token is required")
	}
	chatbotID := strings.TrimSpace(cfg.ChatbotID)
	if chatbotID == "" {
		return nil, errors.New("chatbot id is required")
	}
	field := strings.TrimSpace(cfg.QuestionField)
	if field == "" {
		field = DefaultQuestionField
	}
	if field == "chatbot_id" {
		return nil, errors.New("question field cannot be chatbot_id")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		endpoint:      buildChatEndpoint(baseURL, cfg.Path),
		token:         token,
		chatbotID:     chatbotID,
		questionField: field,
		httpClient:    client,
	}, nil
}

// Open sends content and returns the response body for incremental reads.
// The caller closes the body.
func (c *Client) Open(ctx context.Context, content string) (io.ReadCloser, error) {
	requestBody, err := json.Marshal(map[string]string{
		"chatbot_id":    c.chatbotID,
		c.questionField: content,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		defer httpResp.Body.Close()
		return nil, readStatusError(httpResp.Body, httpResp.StatusCode)
	}
	return httpResp.Body, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

func buildChatEndpoint(baseURL, path string) string {
	base := strings.TrimRight(baseURL, "/")
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if strings.HasSuffix(base, path) {
		return base
	}
	return base + path
}

// StatusError is returned by Open when the server answers with a non-2xx
// status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("chat request failed: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("chat request failed with status %d", e.StatusCode)
}

func readStatusError(body io.Reader, status int) error {
	data, _ := io.ReadAll(io.LimitReader(body, 4096))
	var resp struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Detail  string          `json:"detail"`
	}
	message := ""
	if err := json.Unmarshal(data, &resp); err == nil {
		message = firstNonEmpty(errorText(resp.Error), resp.Message, resp.Detail)
	} else {
		message = strings.TrimSpace(string(data))
	}
	return &StatusError{StatusCode: status, Message: message}
}

func errorText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Message
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
