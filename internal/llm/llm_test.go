package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, status int, body string, got *chatRequest, auth *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete(t *testing.T) {
	var req chatRequest
	var auth string
	srv := newServer(t, http.StatusOK,
		`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"## Overview\nHello"},"finish_reason":"stop"}]}`,
		&req, &auth)

	c := NewClient(srv.URL+"/v1/", "sk-test", "gpt-test", time.Second)
	text, err := c.Complete(context.Background(), "write a readme")
	require.NoError(t, err)

	assert.Equal(t, "## Overview\nHello", text)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-test", req.Model)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "write a readme", req.Messages[0].Content)
}

func TestCompleteNoChoices(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`, nil, nil)

	c := NewClient(srv.URL+"/v1", "sk-test", "gpt-test", time.Second)
	_, err := c.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCompleteServiceError(t *testing.T) {
	srv := newServer(t, http.StatusUnauthorized,
		`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`, nil, nil)

	c := NewClient(srv.URL+"/v1", "sk-bad", "gpt-test", time.Second)
	_, err := c.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key")
}

func TestCompleteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL+"/v1", "sk-test", "gpt-test", 20*time.Millisecond)
	_, err := c.Complete(context.Background(), "p")
	require.Error(t, err)
}
