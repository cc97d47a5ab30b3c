package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

const actorKey = contextKey("actor")

// DefaultActor is used when a caller does not identify itself. Scheduled
// reconciliation and migrations post as this actor too.
const DefaultActor = "system"

// ActorMiddleware records who is acting, taken from the X-Actor header set
// by the upstream auth layer. The ledger itself does not authenticate; it
// only needs an identity for the audit columns.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader("X-Actor")
		if actor == "" {
			actor = DefaultActor
		}
		ctx := context.WithValue(c.Request.Context(), actorKey, actor)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetActorFromCtx retrieves the acting user from the context.
func GetActorFromCtx(ctx context.Context) string {
	actor, ok := ctx.Value(actorKey).(string)
	if !ok || actor == "" {
		return DefaultActor
	}
	return actor
}
