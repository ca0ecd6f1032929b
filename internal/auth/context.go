package auth

import (
	"context"

	"google.golang.org/grpc/metadata"
)

type ctxKey struct{}

// WithSubject records who requested the current sync.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ctxKey{}, subject)
}

// Subject returns the requester stored by WithSubject, falling back to the
// x-requested-by gRPC metadata header. Unknown callers are "system".
func Subject(ctx context.Context) string {
	if val, ok := ctx.Value(ctxKey{}).(string); ok && val != "" {
		return val
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get("x-requested-by"); len(val) > 0 {
			return val[0]
		}
	}
	return "system"
}
