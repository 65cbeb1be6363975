package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ActorHeader carries the identity established by the upstream gateway.
const ActorHeader = "X-Actor-ID"

const actorIDKey = contextKey("actorID")

// RequireActor rejects requests that do not carry an actor identity and stores it
// in the Gin and request contexts.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(ActorHeader)
		if actorID == "" {
			GetLoggerFromContext(c).Warn("Request without actor identity")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + ActorHeader + " header"})
			return
		}
		c.Set(string(actorIDKey), actorID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), actorIDKey, actorID))
		c.Next()
	}
}

// GetActorIDFromContext retrieves the actor ID from the Gin context.
// It returns the actor ID and a boolean indicating if it was found.
func GetActorIDFromContext(c *gin.Context) (string, bool) {
	actorIDVal, exists := c.Get(string(actorIDKey))
	if !exists {
		if v, ok := c.Request.Context().Value(actorIDKey).(string); ok {
			return v, true
		}
		return "", false
	}

	actorID, ok := actorIDVal.(string)
	if !ok {
		return "", false
	}
	return actorID, true
}
