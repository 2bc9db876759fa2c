package form

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iglloo/lead-intake/internal/leads"
)

func TestHTTPSubmitterOK(t *testing.T) {
	var got leads.Submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	s, err := NewHTTPSubmitter(srv.URL+DefaultEndpoint, srv.Client())
	require.NoError(t, err)

	err = s.Submit(context.Background(), leads.Submission{Name: "Ana", Email: "ana@example.com", Message: "Hello there, Lisbon"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
}

func TestHTTPSubmitterErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"Failed to send message."}`, want: "status 500"},
		{name: "ok false", status: http.StatusOK, body: `{"ok":false,"error":"nope"}`, want: "nope"},
		{name: "ok false no detail", status: http.StatusOK, body: `{"ok":false}`, want: "something went wrong"},
		{name: "not json", status: http.StatusOK, body: `<html>`, want: "decode response"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			s, err := NewHTTPSubmitter(srv.URL, nil)
			require.NoError(t, err)
			err = s.Submit(context.Background(), leads.Submission{Name: "Ana"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestHTTPSubmitterRequiresEndpoint(t *testing.T) {
	_, err := NewHTTPSubmitter("  ", nil)
	assert.Error(t, err)
}

func TestHTTPSubmitterCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	s, err := NewHTTPSubmitter(srv.URL, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Submit(ctx, leads.Submission{}))
}
