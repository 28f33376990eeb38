package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", h, func(c *gin.Context) { c.Set("reached", true) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestCreatedSetsLocation(t *testing.T) {
	w := run(t, func(c *gin.Context) { Created(c, "/api/v1/groups/cats", gin.H{"slug": "cats"}) })

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/groups/cats", w.Header().Get("Location"))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Nil(t, body.Error)
}

func TestErrorEnvelope(t *testing.T) {
	w := run(t, func(c *gin.Context) { NotFound(c, "post not found") })

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, CodeNotFound, body.Error.Code)
	assert.Equal(t, "post not found", body.Error.Message)
}

func TestTooManyRequestsAborts(t *testing.T) {
	w := run(t, func(c *gin.Context) { TooManyRequests(c, "2") })

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), CodeRateLimited)
}

func TestSeeOtherAndNoContent(t *testing.T) {
	w := run(t, func(c *gin.Context) { SeeOther(c, "/api/v1/profiles/ann/posts/1") })
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/api/v1/profiles/ann/posts/1", w.Header().Get("Location"))

	w = run(t, func(c *gin.Context) { NoContent(c) })
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())
}
