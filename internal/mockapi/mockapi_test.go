// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mockapi

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(cfg, quietLogger()))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, body string, header http.Header) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+StreamPath, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

// =============================================================================
// SCRIPT TESTS
// =============================================================================

func TestBuildScript_WordsConcatenateToReply(t *testing.T) {
	s := buildScript(chatRequest{Message: "  Hello there  ", Mentions: []string{"orders"}})
	assert.Equal(t, "Looking at orders. You said: Hello there", strings.Join(s.words, ""))
	assert.Equal(t, -1, s.failAfter)
}

func TestBuildScript_Directives(t *testing.T) {
	tests := []struct {
		message string
		check   func(script) int
	}{
		{"please /fail now", func(s script) int { return s.failAfter }},
		{"please /hang now", func(s script) int { return s.hangAfter }},
		{"please /drop now", func(s script) int { return s.dropAfter }},
	}
	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			s := buildScript(chatRequest{Message: tc.message})
			assert.Equal(t, len(s.words)/2, tc.check(s))
		})
	}
}

// =============================================================================
// HANDLER TESTS
// =============================================================================

func TestStream_HappyPath(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, body := post(t, srv, `{"message":"Hello","sessionId":null}`, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "event: start\ndata: {\"sessionId\":\""))
	assert.Contains(t, body, "event: chunk\ndata: {\"content\":\"You \"}")
	assert.True(t, strings.HasSuffix(body, "event: end\ndata: {}\n\n"))
}

func TestStream_KeepsGivenSessionID(t *testing.T) {
	srv := newTestServer(t, Config{})
	_, body := post(t, srv, `{"message":"Hello","sessionId":"S1"}`, nil)
	assert.Contains(t, body, `data: {"sessionId":"S1"}`)
}

func TestStream_FailDirectiveEmitsError(t *testing.T) {
	srv := newTestServer(t, Config{})
	_, body := post(t, srv, `{"message":"go /fail"}`, nil)
	assert.Contains(t, body, "event: error")
	assert.NotContains(t, body, "event: end")
}

func TestStream_DropDirectiveOmitsEnd(t *testing.T) {
	srv := newTestServer(t, Config{})
	_, body := post(t, srv, `{"message":"go /drop please"}`, nil)
	assert.Contains(t, body, "event: start")
	assert.NotContains(t, body, "event: end")
	assert.NotContains(t, body, "event: error")
}

func TestStream_RejectsBadRequests(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, _ := post(t, srv, `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, srv, `{"message":"   "}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, srv, `{"message":"","mentions":["orders"]}`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStream_BearerToken(t *testing.T) {
	srv := newTestServer(t, Config{APIToken: "secret"})

	resp, _ := post(t, srv, `{"message":"hi"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = post(t, srv, `{"message":"hi"}`, http.Header{"Authorization": {"Bearer secret"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
