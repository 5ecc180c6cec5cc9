package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

type opKey struct{}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// WithOperation tags the context logger with the user-facing operation
// (login, verify_mfa, register) so every request it triggers is grouped.
// Transport adds the same "op" attribute when it logs with its own logger.
func WithOperation(ctx context.Context, op string) context.Context {
	l := FromContext(ctx)
	ctx = context.WithValue(ctx, opKey{}, op)
	return WithContext(ctx, l.With("op", op))
}

// Operation returns the operation set by WithOperation, or "".
func Operation(ctx context.Context) string {
	op, _ := ctx.Value(opKey{}).(string)
	return op
}
