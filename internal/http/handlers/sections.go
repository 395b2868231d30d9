package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ricmelo/menuhub/internal/cache"
	"github.com/ricmelo/menuhub/internal/config"
	"github.com/ricmelo/menuhub/internal/domain/section"
	"github.com/ricmelo/menuhub/internal/domain/user"
	"github.com/ricmelo/menuhub/internal/http/middlewares"
	"github.com/ricmelo/menuhub/internal/utils"
)

type SectionStore interface {
	Create(ctx context.Context, s section.Section) error
	ListByUserWithProducts(ctx context.Context, userID string) ([]section.WithProducts, error)
}

type ProfileReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type SectionsHandler struct {
	repo      SectionStore
	users     ProfileReader
	menuCache *cache.Cache
}

func NewSectionsHandler(repo SectionStore, users ProfileReader, menuCache *cache.Cache) *SectionsHandler {
	return &SectionsHandler{
		repo:      repo,
		users:     users,
		menuCache: menuCache,
	}
}

// HomeResponse is what the presentation layer renders: the owner's profile
// bits plus every section with its products, in insertion order.
type HomeResponse struct {
	RestaurantName string                 `json:"restaurantName,omitempty"`
	Logo           string                 `json:"logo,omitempty"`
	Sections       []section.WithProducts `json:"sections"`
}

func (h *SectionsHandler) CreateSection(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Log in to continue")
		return
	}

	var req section.CreateSectionRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	s := section.NewFromCreateRequest(userID, req)

	if err := h.repo.Create(cctx, s); err != nil {
		RespondInternal(ctx, "Could not create section")
		return
	}

	h.invalidateMenu(userID)

	ctx.JSON(http.StatusCreated, s)
}

func (h *SectionsHandler) Home(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Log in to continue")
		return
	}

	key := utils.BuildMenuCacheKey(userID)

	if h.menuCache != nil {
		if cached, ok := h.menuCache.Get(key); ok {
			if resp, ok := cached.(HomeResponse); ok {
				RespondJSONWithETag(ctx, http.StatusOK, resp)
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	owner, err := h.users.GetByID(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not load menu")
		return
	}

	sections, err := h.repo.ListByUserWithProducts(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not load menu")
		return
	}

	resp := HomeResponse{
		RestaurantName: owner.RestaurantName,
		Logo:           owner.LogoPath,
		Sections:       sections,
	}

	if h.menuCache != nil {
		h.menuCache.Set(key, resp)
	}

	RespondJSONWithETag(ctx, http.StatusOK, resp)
}

func (h *SectionsHandler) invalidateMenu(userID string) {
	if h.menuCache != nil {
		h.menuCache.Delete(utils.BuildMenuCacheKey(userID))
	}
}
