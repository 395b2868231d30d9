package handlers_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ricmelo/menuhub/internal/cache"
	"github.com/ricmelo/menuhub/internal/domain/product"
	"github.com/ricmelo/menuhub/internal/domain/section"
	"github.com/ricmelo/menuhub/internal/domain/user"
	"github.com/ricmelo/menuhub/internal/http/handlers"
	"github.com/ricmelo/menuhub/internal/utils"
)

type fakeSectionStore struct {
	createFn func(ctx context.Context, s section.Section) error
	listFn   func(ctx context.Context, userID string) ([]section.WithProducts, error)

	listCalls int
}

func (f *fakeSectionStore) Create(ctx context.Context, s section.Section) error {
	if f.createFn != nil {
		return f.createFn(ctx, s)
	}
	return nil
}

func (f *fakeSectionStore) ListByUserWithProducts(ctx context.Context, userID string) ([]section.WithProducts, error) {
	f.listCalls++
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}
	return []section.WithProducts{}, nil
}

type fakeProfileReader struct {
	getByIDFn func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeProfileReader) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return user.User{ID: id}, nil
}

func newSectionsRouter(store *fakeSectionStore, users *fakeProfileReader, menuCache *cache.Cache) *gin.Engine {
	r := gin.New()

	h := handlers.NewSectionsHandler(store, users, menuCache)

	authed := r.Group("/", asUser("user-1", "raw-token"))
	authed.POST("/sections", h.CreateSection)
	authed.GET("/home", h.Home)

	return r
}

func TestCreateSection(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "valid name",
			body:       `{"name":"Drinks"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing name",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "empty name",
			body:       `{"name":""}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "name too long",
			body:       `{"name":"` + strings.Repeat("x", 81) + `"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var created *section.Section

			store := &fakeSectionStore{
				createFn: func(ctx context.Context, s section.Section) error {
					created = &s
					return nil
				},
			}

			r := newSectionsRouter(store, &fakeProfileReader{}, nil)

			rec := doJSON(t, r, http.MethodPost, "/sections", tc.body)

			if rec.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d (body: %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}

			if tc.wantCode != "" {
				if code := errorCode(t, rec); code != tc.wantCode {
					t.Fatalf("got error code %q, want %q", code, tc.wantCode)
				}
				return
			}

			if created == nil {
				t.Fatal("section was never written")
			}

			if created.UserID != "user-1" {
				t.Fatalf("section owned by %q, want user-1", created.UserID)
			}

			if created.Name != "Drinks" {
				t.Fatalf("section named %q, want Drinks", created.Name)
			}
		})
	}
}

func TestCreateSectionInvalidatesMenuCache(t *testing.T) {
	menuCache := cache.New(time.Minute)
	key := utils.BuildMenuCacheKey("user-1")

	menuCache.Set(key, handlers.HomeResponse{RestaurantName: "stale"})

	r := newSectionsRouter(&fakeSectionStore{}, &fakeProfileReader{}, menuCache)

	rec := doJSON(t, r, http.MethodPost, "/sections", `{"name":"Drinks"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201", rec.Code)
	}

	if _, ok := menuCache.Get(key); ok {
		t.Fatal("stale menu entry survived the write")
	}
}

func TestHome(t *testing.T) {
	store := &fakeSectionStore{
		listFn: func(ctx context.Context, userID string) ([]section.WithProducts, error) {
			return []section.WithProducts{
				{
					Section: section.Section{ID: "sec-1", Name: "Drinks"},
					Products: []product.Product{
						{ID: "prod-1", SectionID: "sec-1", Name: "Cola", Price: 2.5, ImagePath: "/uploads/cola.png"},
					},
				},
				{
					Section:  section.Section{ID: "sec-2", Name: "Desserts"},
					Products: []product.Product{},
				},
			}, nil
		},
	}

	users := &fakeProfileReader{
		getByIDFn: func(ctx context.Context, id string) (user.User, error) {
			return user.User{ID: id, RestaurantName: "Casa Uno", LogoPath: "/uploads/logo.png"}, nil
		},
	}

	r := newSectionsRouter(store, users, nil)

	rec := doRequest(t, r, http.MethodGet, "/home", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var resp handlers.HomeResponse

	decodeBody(t, rec, &resp)

	if resp.RestaurantName != "Casa Uno" || resp.Logo != "/uploads/logo.png" {
		t.Fatalf("profile bits wrong: %+v", resp)
	}

	if len(resp.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(resp.Sections))
	}

	if len(resp.Sections[0].Products) != 1 || resp.Sections[0].Products[0].Name != "Cola" {
		t.Fatalf("first section products wrong: %+v", resp.Sections[0].Products)
	}

	// a section without products still carries an array, not null
	if resp.Sections[1].Products == nil {
		t.Fatal("empty products rendered as null")
	}

	if rec.Header().Get("ETag") == "" {
		t.Fatal("no ETag on menu response")
	}
}

func TestHomeCollapsesToNotModified(t *testing.T) {
	r := newSectionsRouter(&fakeSectionStore{}, &fakeProfileReader{}, nil)

	first := doRequest(t, r, http.MethodGet, "/home", nil, nil)

	etag := first.Header().Get("ETag")

	if first.Code != http.StatusOK || etag == "" {
		t.Fatalf("first request: status %d, etag %q", first.Code, etag)
	}

	second := doRequest(t, r, http.MethodGet, "/home", nil, map[string]string{
		"If-None-Match": etag,
	})

	if second.Code != http.StatusNotModified {
		t.Fatalf("got status %d, want 304", second.Code)
	}
}

func TestHomeServesFromCache(t *testing.T) {
	store := &fakeSectionStore{}

	r := newSectionsRouter(store, &fakeProfileReader{}, cache.New(time.Minute))

	for i := 0; i < 3; i++ {
		rec := doRequest(t, r, http.MethodGet, "/home", nil, nil)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
	}

	if store.listCalls != 1 {
		t.Fatalf("store consulted %d times, want 1", store.listCalls)
	}
}
