package proxy

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProxy(upstreamURL string) *gin.Engine {
	h := NewHandler(NewClient(upstreamURL, nil, nil), slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := gin.New()
	r.GET("/", h.Root)
	r.GET("/tasks", h.Tasks)
	r.GET("/labels/", h.Labels)
	return r
}

func get(t *testing.T, r *gin.Engine, path, authorization string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRoot(t *testing.T) {
	w, body := get(t, newProxy("http://unused"), "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, welcome, body["message"])
}

func TestTasks_UnreachableUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	w, body := get(t, newProxy(url), "/tasks", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, body["detail"], "network error reaching task API")
}

func TestTasks_UpstreamNotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found."}`))
	}))
	defer upstream.Close()

	w, body := get(t, newProxy(upstream.URL), "/tasks", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, body["detail"], "Not found.")
	assert.Equal(t, "task API error: Not found.", body["detail"])
}

func TestTasks_RelaysBodyAndAuthorization(t *testing.T) {
	var gotAuth, gotPath string
	var sawAuth bool

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_, sawAuth = r.Header["Authorization"]
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"t1","title":"x"}]`))
	}))
	defer upstream.Close()

	r := newProxy(upstream.URL)

	w, _ := get(t, r, "/tasks", "Bearer abc")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":"t1","title":"x"}]`, w.Body.String())
	assert.Equal(t, "/tasks/", gotPath)
	assert.Equal(t, "Bearer abc", gotAuth)

	w, _ = get(t, r, "/labels/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/labels/", gotPath)
	assert.False(t, sawAuth, "authorization must not be sent when absent")
}

func TestTasks_UpstreamErrorShapes(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantDetail string
	}{
		{
			name:       "envelope message",
			status:     http.StatusUnauthorized,
			body:       `{"error":{"code":"unauthorized","message":"Invalid or expired access token."}}`,
			wantStatus: http.StatusUnauthorized,
			wantDetail: "task API error: Invalid or expired access token.",
		},
		{
			name:       "no usable detail",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantStatus: http.StatusBadGateway,
			wantDetail: "task API error: unknown error",
		},
		{
			name:       "success with non-json body",
			status:     http.StatusOK,
			body:       `not json`,
			wantStatus: http.StatusInternalServerError,
			wantDetail: "unexpected error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer upstream.Close()

			w, body := get(t, newProxy(upstream.URL), "/tasks", "")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantDetail, body["detail"])
		})
	}
}

func TestExtractDetail(t *testing.T) {
	assert.Equal(t, "Not found.", extractDetail([]byte(`{"detail":"Not found.","error":{"message":"other"}}`)))
	assert.Equal(t, "from envelope", extractDetail([]byte(`{"error":{"message":"from envelope"}}`)))
	assert.Equal(t, `{"label_ids":"bad"}`, extractDetail([]byte(`{"detail":{"label_ids":"bad"}}`)))
	assert.Equal(t, "unknown error", extractDetail([]byte(`{}`)))
	assert.Equal(t, "unknown error", extractDetail([]byte(``)))
}
