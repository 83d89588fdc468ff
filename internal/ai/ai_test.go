package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindsupport/internal/config"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		AIAPIKey:     "test-key",
		AIBaseURL:    baseURL,
		AIModel:      "test-model",
		AITimeoutSec: 2,
	}
}

func TestClient_Generate(t *testing.T) {
	var gotReq chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "I hear you."}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	reply, err := c.Generate(context.Background(), "I feel tired", []Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi there"},
	})
	require.NoError(t, err)
	assert.Equal(t, "I hear you.", reply)

	// system prompt + 2 history turns + current message
	require.Len(t, gotReq.Messages, 4)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "I feel tired", gotReq.Messages[3].Content)
}

func TestClient_Generate_TrimsHistory(t *testing.T) {
	var gotReq chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	history := make([]Message, 30)
	for i := range history {
		history[i] = Message{Role: "user", Content: "turn"}
	}

	c := NewClient(testConfig(srv.URL))
	_, err := c.Generate(context.Background(), "latest", history)
	require.NoError(t, err)

	// system + capped history + current message
	assert.Len(t, gotReq.Messages, 1+historyLimit+1)
}

func TestClient_Generate_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.Generate(context.Background(), "hello", nil)
	assert.Error(t, err)
}

func TestClient_Generate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(3 * time.Second)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.AITimeoutSec = 1
	c := NewClient(cfg)

	start := time.Now()
	_, err := c.Generate(context.Background(), "hello", nil)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2500*time.Millisecond)
}

func TestClient_Generate_NoKey(t *testing.T) {
	c := NewClient(&config.Config{AIBaseURL: "http://localhost:1", AITimeoutSec: 1})
	_, err := c.Generate(context.Background(), "hello", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFallbackResponse(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		contains string
	}{
		{"Crisis", "I want to kill myself", "988"},
		{"Crisis Self Harm", "thinking about self-harm again", "988"},
		{"Anxiety", "I'm so anxious about tomorrow", "breathing"},
		{"Sadness", "I've been crying all day", "cry"},
		{"Stress", "this deadline is crushing me", "25-minute"},
		{"Gratitude", "thank you so much", "welcome"},
		{"Greeting", "hello there", "MindSupport AI"},
		{"Happiness", "I'm really happy today", "celebrate"},
		{"Default", "the weather is odd", "I am listening"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackResponse(tt.message)
			assert.Contains(t, got, tt.contains)
		})
	}
}

func TestFallbackResponse_CrisisWinsOverOtherKeywords(t *testing.T) {
	// A message matching both crisis and sadness keywords must get the
	// hotline referral.
	got := FallbackResponse("I'm sad and I want to hurt myself")
	assert.Contains(t, got, "988")
}

func TestFallbackResponse_Deterministic(t *testing.T) {
	msg := "I am so stressed about my thesis"
	assert.Equal(t, FallbackResponse(msg), FallbackResponse(msg))
}

type failingClient struct{}

func (failingClient) Generate(context.Context, string, []Message) (string, error) {
	return "", context.DeadlineExceeded
}

type echoClient struct{}

func (echoClient) Generate(_ context.Context, msg string, _ []Message) (string, error) {
	return "echo: " + msg, nil
}

func TestResponder_UsesClientWhenHealthy(t *testing.T) {
	r := NewResponder(echoClient{})
	reply, fromModel := r.Respond(context.Background(), "hello", nil)
	assert.True(t, fromModel)
	assert.Equal(t, "echo: hello", reply)
}

func TestResponder_FallsBackOnError(t *testing.T) {
	r := NewResponder(failingClient{})
	reply, fromModel := r.Respond(context.Background(), "I feel anxious", nil)
	assert.False(t, fromModel)
	assert.True(t, strings.Contains(reply, "breathing"))
}

func TestResponder_NilClient(t *testing.T) {
	r := NewResponder(nil)
	reply, fromModel := r.Respond(context.Background(), "random message", nil)
	assert.False(t, fromModel)
	assert.NotEmpty(t, reply)
}
