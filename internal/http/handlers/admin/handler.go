package admin

import (
	handlershared "github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/http/handlers/shared"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/provider"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler is the operational API entry point: payout ledgers, the fee
// schedule and fulfillment status updates.
type Handler struct {
	*provider.Container
}

// New builds the admin handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func actorFromContext(c *gin.Context) service.PayoutReadActor {
	actor := service.PayoutReadActor{
		Email:     handlershared.GetContextString(c, "user_email"),
		RequestID: handlershared.GetContextString(c, "request_id"),
	}
	if uid, exists := c.Get("user_id"); exists {
		if v, ok := uid.(uint); ok {
			actor.UserID = v
		}
	}
	return actor
}
