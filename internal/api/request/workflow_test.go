package request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithParams(workspace, segment string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/workflow/x/y", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("workspace", workspace)
	rctx.URLParams.Add("segment", segment)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestTriggerKey(t *testing.T) {
	key, err := TriggerKey(requestWithParams("acme", "support"))
	require.NoError(t, err)
	assert.Equal(t, "acme", key.Workspace)
	assert.Equal(t, "support", key.Segment)
}

func TestTriggerKey_Invalid(t *testing.T) {
	cases := []struct {
		name      string
		workspace string
		segment   string
	}{
		{"empty workspace", "", "support"},
		{"empty segment", "acme", ""},
		{"uppercase", "Acme", "support"},
		{"path traversal", "..", "support"},
		{"spaces", "ac me", "support"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := TriggerKey(requestWithParams(tc.workspace, tc.segment))
			require.Error(t, err)
		})
	}
}

func TestPayload(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":"hi"}`))
	payload, err := Payload(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"hi"}`, string(payload))
}

func TestPayload_Empty(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	payload, err := Payload(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(payload))
}

func TestPayload_InvalidJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"broken`))
	_, err := Payload(r)
	require.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.Equal(t, "", BearerToken(r))

	r.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", BearerToken(r))

	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Equal(t, "", BearerToken(r))
}
