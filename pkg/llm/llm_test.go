package llm

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
)

func TestIsCloudProvider(t *testing.T) {
	for _, p := range []string{"gemini", "groq", "mistral"} {
		assert.True(t, IsCloudProvider(p), p)
	}
	for _, p := range []string{"ollama", "openai", "unknown"} {
		assert.False(t, IsCloudProvider(p), p)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "bard"})
	assert.Error(t, err)
}

func TestGeminiComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-2.0-flash-exp:generateContent", r.URL.Path)
		assert.Equal(t, "secret-key", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "extract things", req.Contents[0].Parts[0].Text)
		assert.Equal(t, completionTemperature, req.GenerationConfig.Temperature)

		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "{\"annual_fee\": 0}"}]}}]}`))
	}))
	defer srv.Close()

	c := &geminiClient{model: "gemini-2.0-flash-exp", baseURL: srv.URL, http: srv.Client()}
	reply, err := c.Complete(context.Background(), "extract things", "secret-key")

	require.NoError(t, err)
	assert.Equal(t, `{"annual_fee": 0}`, reply)
}

func TestGeminiCompleteRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := &geminiClient{model: "m", baseURL: srv.URL, http: srv.Client()}
	_, err := c.Complete(context.Background(), "p", "k")

	require.Error(t, err)
	assert.True(t, IsRateLimited(err))

	ae, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "gemini", ae.Provider)
	assert.Equal(t, http.StatusTooManyRequests, ae.StatusCode)
	assert.Contains(t, ae.Body, "quota exceeded")
}

func TestGeminiCompleteEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	c := &geminiClient{model: "m", baseURL: srv.URL, http: srv.Client()}
	_, err := c.Complete(context.Background(), "p", "k")

	assert.Error(t, err)
}

func TestChatComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-3.3-70b", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "reply text"}}]}`))
	}))
	defer srv.Close()

	c := &chatClient{provider: "groq", baseURL: srv.URL, model: "llama-3.3-70b", http: srv.Client()}
	reply, err := c.Complete(context.Background(), "prompt", "gsk_test")

	require.NoError(t, err)
	assert.Equal(t, "reply text", reply)
}

func TestChatCompleteOmitsAuthWithoutCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "ok"}}]}`))
	}))
	defer srv.Close()

	c := &chatClient{provider: "openai", baseURL: srv.URL, model: "m", http: srv.Client()}
	_, err := c.Complete(context.Background(), "prompt", "")

	assert.NoError(t, err)
}

func TestChatCompleteServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := &chatClient{provider: "mistral", baseURL: srv.URL, model: "m", http: srv.Client()}
	_, err := c.Complete(context.Background(), "p", "k")

	assert.True(t, IsUnavailable(err))
	assert.False(t, IsRateLimited(err))
}

func TestOllamaComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "llama3", req.Model)

		_, _ = w.Write([]byte(`{"response": "local reply"}`))
	}))
	defer srv.Close()

	c := &ollamaClient{baseURL: srv.URL, model: "llama3", http: srv.Client()}
	reply, err := c.Complete(context.Background(), "prompt", "")

	require.NoError(t, err)
	assert.Equal(t, "local reply", reply)
}

func TestNewOpenAIRoutesUnderV1(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "ok"}}]}`))
	}))
	defer srv.Close()

	c, err := New(Config{Provider: "openai", Model: "m", BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Provider())

	reply, err := c.Complete(context.Background(), "prompt", "")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsNotFound(&APIError{Provider: "gemini", StatusCode: 404}))
	assert.False(t, IsNotFound(&APIError{Provider: "gemini", StatusCode: 500}))
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.False(t, IsTimeout(assert.AnError))

	ae := &APIError{Provider: "groq", StatusCode: 429, Body: "slow down"}
	assert.Equal(t, "groq: unexpected status 429", ae.Error())
}

func TestAPIErrorBodyTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, strings.Repeat("e", 1000), http.StatusBadRequest)
	}))
	defer srv.Close()

	c := &ollamaClient{baseURL: srv.URL, model: "m", http: srv.Client()}
	_, err := c.Complete(context.Background(), "p", "")

	ae, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Len(t, ae.Body, maxErrorBody)
}
