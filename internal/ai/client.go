// Package ai provides the chat completion client and the canned fallback
// responder used when the model API is unreachable.
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

	"mindsupport/internal/config"
	"mindsupport/internal/observability"
)

// SystemPrompt frames the assistant as an empathetic peer-support
// companion for students, not a therapist.
const SystemPrompt = `You are MindSupport AI, an empathetic and supportive assistant built to help students who are under emotional or mental pressure.

Guidelines:
1. Use warm, friendly, easy-to-understand language.
2. Listen with empathy and never judge.
3. Validate the user's feelings; every emotion is valid.
4. Never give a medical diagnosis or treatment advice.
5. Focus on simple emotional-regulation techniques such as 4-7-8 breathing, 5-4-3-2-1 grounding, mindfulness, positive affirmations, and journaling prompts.

If the user shows signs of self-harm or suicidal thoughts, show genuine care and urge them to contact professional help immediately, and remind them that they are not alone.

You are a listening friend, not a therapist. You are here to listen and to give emotional support.`

// Message is a single chat turn sent to the model API.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client generates assistant replies.
type Client interface {
	// Generate returns the assistant reply to message given the prior
	// conversation history, oldest first.
	Generate(ctx context.Context, message string, history []Message) (string, error)
}

// ErrNotConfigured is returned by Generate when no API key is set.
var ErrNotConfigured = errors.New("ai: no API key configured")

type httpClient struct {
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
	client  *http.Client
}

// NewClient builds a chat completion client for an OpenAI-compatible API.
// The timeout bounds the whole exchange; callers are expected to fall back
// to the canned responder on any error.
func NewClient(cfg *config.Config) Client {
	timeout := time.Duration(cfg.AITimeoutSec) * time.Second
	return &httpClient{
		baseURL: strings.TrimRight(cfg.AIBaseURL, "/"),
		apiKey:  strings.TrimSpace(cfg.AIAPIKey),
		model:   cfg.AIModel,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("ai: http %d: %s", e.StatusCode, e.Body)
}

// historyLimit caps how many prior turns are sent to the model.
const historyLimit = 10

func (c *httpClient) Generate(ctx context.Context, message string, history []Message) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	start := time.Now()
	ctx, span := observability.TraceAICall(ctx, c.model)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: SystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: message})

	reqBody := chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   1000,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		observability.ObserveAIRequest("error", start)
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.ObserveAIRequest("error", start)
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.ObserveAIRequest("error", start)
		return "", &apiError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out chatCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		observability.ObserveAIRequest("error", start)
		return "", fmt.Errorf("ai: decode response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		observability.ObserveAIRequest("empty", start)
		return "", errors.New("ai: empty completion")
	}

	observability.ObserveAIRequest("ok", start)
	return out.Choices[0].Message.Content, nil
}
