package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warning "))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info"}, &buf)

	ctx := WithLogger(context.Background(), logger)
	l := Ctx(ctx)
	l.Info().Msg("scoped")
	assert.Contains(t, buf.String(), "scoped")

	g := Ctx(context.Background())
	assert.NotNil(t, g)
}

func TestWithViewerAddsFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(Config{Level: "info"}, &buf))
	ctx = WithViewer(ctx, "u-7", "reader")

	l := Ctx(ctx)
	l.Info().Msg("viewed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "u-7", line[FieldUserID])
	assert.Equal(t, "reader", line[FieldUsername])
}

func TestGinMiddlewareAttachesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := New(Config{Level: "info", ServiceName: "blog-service"}, &buf)

	r := gin.New()
	r.Use(GinMiddleware(logger))
	r.GET("/ping", func(c *gin.Context) {
		c.Set(FieldUserID, "u-1")
		l := Ctx(c.Request.Context())
		l.Info().Msg("inside handler")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var completed map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &completed))
	assert.Equal(t, "req-42", completed[FieldRequestID])
	assert.Equal(t, "/ping", completed[FieldRoute])
	assert.Equal(t, "u-1", completed[FieldUserID])
	assert.Equal(t, "blog-service", completed[FieldService])
	assert.EqualValues(t, http.StatusNoContent, completed[FieldStatus])
}

func TestGinMiddlewareGeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(GinMiddleware(New(Config{Level: "disabled"}, &bytes.Buffer{})))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestGinMiddlewareSkipPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(GinMiddleware(New(Config{Level: "info"}, &buf), WithSkipPaths("/health")))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/posts", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts", nil))
	assert.Contains(t, buf.String(), `"route":"/posts"`)
}

func TestGinMiddlewareSlowThreshold(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(GinMiddleware(New(Config{Level: "info"}, &buf), WithSlowThreshold(time.Millisecond)))
	r.GET("/slow", func(c *gin.Context) {
		time.Sleep(5 * time.Millisecond)
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, true, line[FieldSlow])
}
