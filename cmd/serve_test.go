package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ytpicker/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubStreams struct{}

func (stubStreams) GetStreams(context.Context, string) (*model.VideoInfo, []model.StreamDescriptor, error) {
	return &model.VideoInfo{Title: "Demo"}, []model.StreamDescriptor{{Itag: "22", Resolution: "720p"}}, nil
}

type stubFiles struct{}

func (stubFiles) Download(context.Context, model.DownloadForm) (*model.DownloadedFile, error) {
	return nil, context.Canceled
}

type denyAll struct{}

func (denyAll) IsAllowed(string) bool  { return false }
func (denyAll) GetRemaining(string) int { return 0 }

func testRouter(limited bool) *gin.Engine {
	cfg := &model.Config{RateLimit: model.RateLimitConfig{Enabled: limited}}
	return newRouter(cfg, routerDeps{streams: stubStreams{}, files: stubFiles{}, limiter: denyAll{}})
}

func TestRouterStreamsRequireToken(t *testing.T) {
	r := testRouter(false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	token := cookies[0].Value

	body := `{"url":"https://youtu.be/abc"}`

	req := httptest.NewRequest(http.MethodPost, "/get_streams/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/get_streams/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(model.CSRFHeaderName, token)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.StreamsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Demo", resp.VideoInfo.Title)
}

func TestRouterHealthSkipsToken(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter(false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestRouterRateLimited(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter(true).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
