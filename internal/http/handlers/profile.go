package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ricmelo/menuhub/internal/cache"
	"github.com/ricmelo/menuhub/internal/config"
	"github.com/ricmelo/menuhub/internal/domain/user"
	"github.com/ricmelo/menuhub/internal/http/middlewares"
	"github.com/ricmelo/menuhub/internal/uploads"
	"github.com/ricmelo/menuhub/internal/utils"
)

type ProfileWriter interface {
	UpdateProfile(ctx context.Context, id string, upd user.ProfileUpdate) error
}

type ProfileHandler struct {
	users     ProfileWriter
	uploads   *uploads.Store
	menuCache *cache.Cache
}

func NewProfileHandler(users ProfileWriter, uploadStore *uploads.Store, menuCache *cache.Cache) *ProfileHandler {
	return &ProfileHandler{
		users:     users,
		uploads:   uploadStore,
		menuCache: menuCache,
	}
}

// Update applies a partial profile update from a multipart form: an absent
// field leaves the stored value alone. Replacing the logo does not delete
// the previous file.
func (h *ProfileHandler) Update(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Log in to continue")
		return
	}

	var upd user.ProfileUpdate

	if name, present := ctx.GetPostForm("restaurantName"); present {
		if len(name) > 120 {
			RespondInvalidInput(ctx, "Restaurant name must be at most 120 characters.", nil)
			return
		}
		upd.RestaurantName = &name
	}

	var logoPath string

	fh, err := ctx.FormFile("logo")

	switch {
	case err == nil:
		logoPath, err = h.uploads.Save(fh)

		if err != nil {
			if errors.Is(err, uploads.ErrUnsupportedType) {
				RespondInvalidInput(ctx, "Logo must be a PNG, JPEG, GIF or WebP file.", nil)
				return
			}

			RespondInternal(ctx, "Could not store logo")
			return
		}

		upd.LogoPath = &logoPath

	case errors.Is(err, http.ErrMissingFile):
		// logo untouched

	default:
		RespondInvalidInput(ctx, "Invalid form data", nil)
		return
	}

	if upd.RestaurantName == nil && upd.LogoPath == nil {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.users.UpdateProfile(cctx, userID, upd); err != nil {
		if logoPath != "" {
			_ = h.uploads.Remove(logoPath)
		}

		RespondInternal(ctx, "Could not update profile")
		return
	}

	if h.menuCache != nil {
		h.menuCache.Delete(utils.BuildMenuCacheKey(userID))
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
