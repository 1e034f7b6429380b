package judge_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/skilleval/internal/judge"
)

func TestOpenAICompleter(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"judge","choices":[{"index":0,"message":{"role":"assistant","content":"{\"overall_notes\":\"fine\"}"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	c := judge.NewOpenAICompleter("sk-test", srv.URL+"/v1", "judge")
	text, err := c.Complete(context.Background(), "score this", 321)
	require.NoError(t, err)
	assert.Equal(t, `{"overall_notes":"fine"}`, text)
	assert.Equal(t, "judge", body["model"])
	assert.Equal(t, float64(321), body["max_tokens"])
}

func TestOpenAICompleterNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[]}`)
	}))
	defer srv.Close()

	_, err := judge.NewOpenAICompleter("k", srv.URL, "m").Complete(context.Background(), "p", 10)
	assert.ErrorContains(t, err, "no choices")
}

func TestAnthropicCompleter(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/messages"), r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-test","content":[{"type":"text","text":"{\"overall_notes\":"},{"type":"text","text":"\"ok\"}"}],"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":5}}`)
	}))
	defer srv.Close()

	c := judge.NewAnthropicCompleter("k", srv.URL, "claude-test", option.WithMaxRetries(0))
	text, err := c.Complete(context.Background(), "score this", 2000)
	require.NoError(t, err)
	assert.Equal(t, `{"overall_notes":"ok"}`, text)
	assert.Equal(t, "claude-test", body["model"])
	assert.Equal(t, float64(2000), body["max_tokens"])
}

func TestAnthropicCompleterHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"bad key"}}`)
	}))
	defer srv.Close()

	_, err := judge.NewAnthropicCompleter("bad", srv.URL, "", option.WithMaxRetries(0)).Complete(context.Background(), "p", 10)
	assert.Error(t, err)
}
