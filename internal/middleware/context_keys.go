package middleware

import (
	"context"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey = contextKey("userID")
	actorKey  = contextKey("actor")
)

// GetUserIDFromContext retrieves the authenticated account ID from the request context.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// WithActor returns a copy of ctx carrying the resolved acting account.
func WithActor(ctx context.Context, actor *domain.Account) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActorFromContext retrieves the acting account set by ActorMiddleware.
func GetActorFromContext(c *gin.Context) (*domain.Account, bool) {
	actor, ok := c.Request.Context().Value(actorKey).(*domain.Account)
	return actor, ok && actor != nil
}
