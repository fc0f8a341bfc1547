package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/trainloop/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
)

// sessions are written by the identity service, this one only reads them
const sessionKeyPrefix = "session::"

var ErrInvalidToken = errors.New("invalid or expired session token")

// SessionResolver maps request tokens to the opaque user ids stored by the
// identity service. Session expiry is the redis key TTL.
type SessionResolver struct {
	redisClient *redis.Client
}

func NewSessionResolver(redisClient *redis.Client) *SessionResolver {
	return &SessionResolver{
		redisClient: redisClient,
	}
}

func SessionKey(token string) string {
	return sessionKeyPrefix + token
}

func (r *SessionResolver) UserID(ctx context.Context, token string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.session.userId")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if token == "" {
		return "", ErrInvalidToken
	}

	userID, err := r.redisClient.Get(ctx, SessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrInvalidToken
	}

	return userID, nil
}
