package brave

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/answer-engine/internal/resilience"
)

func TestWebSearch(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   string
		wantCount int
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{
				"web": {"results": [
					{"title": "Go", "url": "https://go.dev", "description": "The Go language", "page_age": "2026-01-05T00:00:00"},
					{"title": "Go wiki", "url": "https://en.wikipedia.org/wiki/Go", "description": "Wiki"}
				]}
			}`,
			wantCount: 2,
		},
		{
			name:    "auth_failure",
			status:  http.StatusUnauthorized,
			body:    `{"error": "invalid token"}`,
			wantErr: "unexpected status 401",
		},
		{
			name:    "malformed_response",
			status:  http.StatusOK,
			body:    `{invalid`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/web/search", r.URL.Path)
				assert.Equal(t, "go language", r.URL.Query().Get("q"))
				assert.Equal(t, "5", r.URL.Query().Get("count"))
				assert.Equal(t, "test-key", r.Header.Get("X-Subscription-Token"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("test-key", WithBaseURL(srv.URL))

			resp, err := client.WebSearch(context.Background(), "go language", 5)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, resp)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Len(t, resp.Web.Results, tt.wantCount)
			assert.Equal(t, "https://go.dev", resp.Web.Results[0].URL)
		})
	}
}

func TestWebSearch_RateLimitIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	_, err := client.WebSearch(context.Background(), "q", 0)

	require.Error(t, err)
	var te *resilience.TransientError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusTooManyRequests, te.StatusCode)
}
