package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vampirenirmal/storyshift/internal/core"
)

// Wire formats spoken by Client.
const (
	APIOpenAI    = "openai"
	APIAnthropic = "anthropic"
)

const maxErrorBody = 512

var errEmptyResponse = errors.New("empty response")

// Client talks to an OpenAI-compatible chat completions endpoint (Groq,
// OpenAI) or the Anthropic messages endpoint. It makes exactly one attempt
// per call; retries belong to Service.
type Client struct {
	provider   string
	apiKey     string
	baseURL    string
	model      string
	apiType    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

type ClientOption func(*Client)

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		transport := c.httpClient.Transport
		c.httpClient = &http.Client{
			Timeout:   timeout,
			Transport: transport,
		}
	}
}

func WithRateLimit(requestsPerMinute int, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}
}

func WithAPIConfig(baseURL, model string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
		if model != "" {
			c.model = model
		}
	}
}

func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for provider. "anthropic" selects the Anthropic
// wire format; every other provider uses chat completions.
func NewClient(provider, apiKey string, opts ...ClientOption) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	apiType := APIOpenAI
	if provider == APIAnthropic {
		apiType = APIAnthropic
	}

	c := &Client{
		provider: provider,
		apiKey:   apiKey,
		baseURL:  "https://api.groq.com/openai/v1",
		model:    "llama-3.1-8b-instant",
		apiType:  apiType,
		httpClient: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(0.5), 5), // 30 req/min
		logger:  slog.Default().With("component", "generation_client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger.Debug("generation client initialized",
		"provider", c.provider,
		"api_type", c.apiType,
		"base_url", c.baseURL,
		"model", c.model,
		"rate_limit", fmt.Sprintf("%v req/s", c.limiter.Limit()))

	return c
}

func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	requestID := fmt.Sprintf("%s_%d", c.provider, time.Now().UnixNano())
	startTime := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Warn("rate limit wait failed",
			"request_id", requestID,
			"error", err)
		return "", fmt.Errorf("rate limit wait failed: %w", err)
	}

	c.logger.Debug("sending generation request",
		"request_id", requestID,
		"wait_duration_ms", time.Since(startTime).Milliseconds(),
		"model", c.model,
		"prompt_length", len(req.Prompt),
		"has_system", req.System != "",
		"temperature", req.Temperature,
		"max_tokens", req.MaxTokens)

	var (
		text string
		err  error
	)
	if c.apiType == APIAnthropic {
		text, err = c.doAnthropicRequest(ctx, requestID, req)
	} else {
		text, err = c.doOpenAIRequest(ctx, requestID, req)
	}
	if err != nil {
		c.logger.Error("generation request failed",
			"request_id", requestID,
			"duration_ms", time.Since(startTime).Milliseconds(),
			"error", err)
		return "", err
	}

	c.logger.Info("generation request successful",
		"request_id", requestID,
		"duration_ms", time.Since(startTime).Milliseconds(),
		"response_length", len(text))

	return text, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *Client) doOpenAIRequest(ctx context.Context, requestID string, req Request) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}

	var response chatResponse
	if err := c.post(ctx, requestID, "/chat/completions", headers, body, &response); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", c.upstream(0, errors.New("no choices in response"))
	}
	if strings.TrimSpace(response.Choices[0].Message.Content) == "" {
		return "", c.upstream(http.StatusOK, errEmptyResponse)
	}

	c.logger.Debug("chat completion usage",
		"request_id", requestID,
		"prompt_tokens", response.Usage.PromptTokens,
		"completion_tokens", response.Usage.CompletionTokens,
		"total_tokens", response.Usage.TotalTokens)

	return response.Choices[0].Message.Content, nil
}

type messagesRequest struct {
	Model       string        `json:"model"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (c *Client) doAnthropicRequest(ctx context.Context, requestID string, req Request) (string, error) {
	body := messagesRequest{
		Model:       c.model,
		System:      req.System,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": "2023-06-01",
	}

	var response messagesResponse
	if err := c.post(ctx, requestID, "/messages", headers, body, &response); err != nil {
		return "", err
	}
	if len(response.Content) == 0 {
		return "", c.upstream(0, errors.New("no content in response"))
	}
	if strings.TrimSpace(response.Content[0].Text) == "" {
		return "", c.upstream(http.StatusOK, errEmptyResponse)
	}

	c.logger.Debug("messages usage",
		"request_id", requestID,
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens)

	return response.Content[0].Text, nil
}

// post sends body as JSON and decodes a 200 response into out. Any other
// outcome is an upstream failure.
func (c *Client) post(ctx context.Context, requestID, endpoint string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpStart := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return c.upstream(0, fmt.Errorf("making request: %w", err))
	}
	defer resp.Body.Close()

	c.logger.Debug("HTTP response received",
		"request_id", requestID,
		"endpoint", endpoint,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(httpStart).Milliseconds())

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.upstream(resp.StatusCode, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return c.upstream(resp.StatusCode, fmt.Errorf("API error: %s", truncate(respBody, maxErrorBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return c.upstream(resp.StatusCode, fmt.Errorf("parsing response: %w", err))
	}
	return nil
}

func (c *Client) upstream(status int, err error) error {
	return &core.UpstreamError{Provider: c.provider, StatusCode: status, Err: err}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
