package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// WithViewer returns ctx whose logger also carries the viewer's id and
// username, so every line logged further down the request names who
// triggered it.
func WithViewer(ctx context.Context, userID, username string) context.Context {
	l := Ctx(ctx).With().
		Str(FieldUserID, userID).
		Str(FieldUsername, username).
		Logger()
	return WithLogger(ctx, l)
}

// Ctx returns the request-scoped logger, or the global one.
func Ctx(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return L()
	}
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return L()
}
