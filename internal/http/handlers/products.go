package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ricmelo/menuhub/internal/cache"
	"github.com/ricmelo/menuhub/internal/config"
	"github.com/ricmelo/menuhub/internal/domain/product"
	"github.com/ricmelo/menuhub/internal/guard"
	"github.com/ricmelo/menuhub/internal/http/middlewares"
	"github.com/ricmelo/menuhub/internal/uploads"
	"github.com/ricmelo/menuhub/internal/utils"
)

type ProductStore interface {
	Create(ctx context.Context, p product.Product) error
}

// OwnershipGuard gates product creation under a client-supplied section id.
type OwnershipGuard interface {
	EnsureOwnsProductTarget(ctx context.Context, userID, sectionID string) error
}

type ProductsHandler struct {
	repo      ProductStore
	guard     OwnershipGuard
	uploads   *uploads.Store
	menuCache *cache.Cache
}

func NewProductsHandler(repo ProductStore, g OwnershipGuard, uploadStore *uploads.Store, menuCache *cache.Cache) *ProductsHandler {
	return &ProductsHandler{
		repo:      repo,
		guard:     g,
		uploads:   uploadStore,
		menuCache: menuCache,
	}
}

func (h *ProductsHandler) CreateProduct(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Log in to continue")
		return
	}

	sectionID := ctx.Param("id")

	if !utils.IsUUID(sectionID) {
		// malformed ids get the same answer as someone else's section
		RespondForbidden(ctx)
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	// ownership is re-verified against the store here, before anything is
	// parsed or written
	err := h.guard.EnsureOwnsProductTarget(cctx, userID, sectionID)

	if err != nil {
		if errors.Is(err, guard.ErrForbidden) {
			RespondForbidden(ctx)
			return
		}

		RespondInternal(ctx, "Could not create product")
		return
	}

	var req product.CreateProductRequest

	if !BindForm(ctx, &req) {
		return
	}

	// image file first, entity row second: a row must never point at a file
	// that is not there
	imagePath, err := h.uploads.Save(req.Image)

	if err != nil {
		if errors.Is(err, uploads.ErrUnsupportedType) {
			RespondInvalidInput(ctx, "Image must be a PNG, JPEG, GIF or WebP file.", nil)
			return
		}

		RespondInternal(ctx, "Could not store image")
		return
	}

	p := product.NewFromCreateRequest(sectionID, imagePath, req)

	if err := h.repo.Create(cctx, p); err != nil {
		// undo the file write so nothing dangles
		_ = h.uploads.Remove(imagePath)

		RespondInternal(ctx, "Could not create product")
		return
	}

	if h.menuCache != nil {
		h.menuCache.Delete(utils.BuildMenuCacheKey(userID))
	}

	ctx.JSON(http.StatusCreated, p)
}
