package log

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderRequestID carries the request id in and out of the service.
const HeaderRequestID = "X-Request-ID"

type ginOptions struct {
	skip map[string]struct{}
	slow time.Duration
}

// GinOption tunes GinMiddleware.
type GinOption func(*ginOptions)

// WithSkipPaths suppresses the access line for the given paths. The request
// still gets a scoped logger.
func WithSkipPaths(paths ...string) GinOption {
	return func(o *ginOptions) {
		for _, p := range paths {
			o.skip[p] = struct{}{}
		}
	}
}

// WithSlowThreshold logs requests slower than d at warn level with slow=true.
func WithSlowThreshold(d time.Duration) GinOption {
	return func(o *ginOptions) { o.slow = d }
}

// GinMiddleware puts a logger carrying the request id into the request
// context and writes one access line when the request completes. Viewer
// fields are read after c.Next() since auth runs later in the chain.
func GinMiddleware(logger zerolog.Logger, opts ...GinOption) gin.HandlerFunc {
	o := ginOptions{skip: make(map[string]struct{})}
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(HeaderRequestID, reqID)

		child := logger.With().
			Str(FieldRequestID, reqID).
			Str(FieldMethod, c.Request.Method).
			Str(FieldPath, c.Request.URL.Path).
			Str(FieldClientIP, c.ClientIP()).
			Logger()
		c.Request = c.Request.WithContext(WithLogger(c.Request.Context(), child))

		c.Next()

		if _, ok := o.skip[c.Request.URL.Path]; ok {
			return
		}

		status := c.Writer.Status()
		latency := time.Since(start)
		slow := o.slow > 0 && latency > o.slow

		var evt *zerolog.Event
		switch {
		case status >= 500:
			evt = child.Error()
		case slow:
			evt = child.Warn().Bool(FieldSlow, true)
		default:
			evt = child.Info()
		}
		evt = evt.
			Str(FieldRoute, c.FullPath()).
			Int(FieldStatus, status).
			Float64(FieldLatency, float64(latency.Microseconds())/1000)

		if userID := c.GetString(FieldUserID); userID != "" {
			evt = evt.Str(FieldUserID, userID)
		}
		if len(c.Errors) > 0 {
			evt = evt.Str("errors", c.Errors.String())
		}

		evt.Msg("request completed")
	}
}
