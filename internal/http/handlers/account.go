package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ricmelo/menuhub/internal/cache"
	"github.com/ricmelo/menuhub/internal/config"
	"github.com/ricmelo/menuhub/internal/http/middlewares"
	"github.com/ricmelo/menuhub/internal/utils"
)

type UserDeleter interface {
	Delete(ctx context.Context, id string) error
}

type SessionDestroyer interface {
	Destroy(ctx context.Context, raw string) error
}

type AccountHandler struct {
	users     UserDeleter
	sessions  SessionDestroyer
	menuCache *cache.Cache
}

func NewAccountHandler(users UserDeleter, sessions SessionDestroyer, menuCache *cache.Cache) *AccountHandler {
	return &AccountHandler{
		users:     users,
		sessions:  sessions,
		menuCache: menuCache,
	}
}

// Delete removes the account and, transitively, every section and product it
// owns, in one transaction. Other owners' data is untouched.
func (h *AccountHandler) Delete(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Log in to continue")
		return
	}

	cctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := h.users.Delete(cctx, userID); err != nil {
		RespondInternal(ctx, "Could not delete account")
		return
	}

	// the cascade already dropped the session rows; this clears the cached
	// entry for the token that made this request
	if raw, ok := middlewares.SessionTokenFromContext(ctx); ok {
		_ = h.sessions.Destroy(cctx, raw)
	}

	if h.menuCache != nil {
		h.menuCache.Delete(utils.BuildMenuCacheKey(userID))
	}

	ctx.Status(http.StatusNoContent)
}
