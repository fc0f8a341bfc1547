package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/trainloop/internal/auth"
	"github.com/2beens/trainloop/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=identity_mocks_test.go -package=middleware_test

const TokenHeader = "X-TRAIN-TOKEN"

type userIDKey struct{}

// WithUserID stores the resolved user id in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserID returns the user id the Identity middleware resolved for the request.
func UserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

type identityResolver interface {
	UserID(ctx context.Context, token string) (string, error)
}

type Identity struct {
	resolver     identityResolver
	allowedPaths map[string]bool
}

func NewIdentity(resolver identityResolver) *Identity {
	return &Identity{
		resolver: resolver,
		allowedPaths: map[string]bool{
			"/":       true,
			"/health": true,
		},
	}
}

// Resolve rejects requests without a valid session token, and puts the
// token's user id into the request context otherwise.
func (i *Identity) Resolve() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.identity")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if i.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get(TokenHeader)
			if token == "" {
				log.Tracef("[missing token] [identity middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-token")
				return
			}

			userID, err := i.resolver.UserID(ctx, token)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					log.Tracef("[invalid token] [identity middleware] unauthorized => %s", r.URL.Path)
					span.SetStatus(codes.Error, "invalid-token")
				} else {
					log.Errorf("[failed identity check] => %s: %s", r.URL.Path, err)
					span.SetStatus(codes.Error, "resolve-err")
					span.RecordError(err)
				}
				http.Error(w, "no can do", http.StatusUnauthorized)
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
