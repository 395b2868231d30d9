package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ricmelo/menuhub/internal/domain/product"
	"github.com/ricmelo/menuhub/internal/guard"
	"github.com/ricmelo/menuhub/internal/http/handlers"
	"github.com/ricmelo/menuhub/internal/uploads"
)

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

const ownedSectionID = "3b241101-e2bb-4255-8caf-4136c566a962"

type fakeProductStore struct {
	createFn func(ctx context.Context, p product.Product) error
}

func (f *fakeProductStore) Create(ctx context.Context, p product.Product) error {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return nil
}

type fakeGuard struct {
	ensureFn func(ctx context.Context, userID, sectionID string) error

	calls int
}

func (f *fakeGuard) EnsureOwnsProductTarget(ctx context.Context, userID, sectionID string) error {
	f.calls++
	if f.ensureFn != nil {
		return f.ensureFn(ctx, userID, sectionID)
	}
	return nil
}

// productForm builds a multipart body; a nil value skips the field entirely.
func productForm(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}

	if image != nil {
		part, err := w.CreateFormFile("image", "item.png")

		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}

		if _, err := part.Write(image); err != nil {
			t.Fatalf("image write failed: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("writer close failed: %v", err)
	}

	return &buf, w.FormDataContentType()
}

func newProductsRouter(t *testing.T, store *fakeProductStore, g *fakeGuard) (*gin.Engine, *uploads.Store) {
	t.Helper()

	uploadStore, err := uploads.NewStore(t.TempDir())

	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	r := gin.New()

	h := handlers.NewProductsHandler(store, g, uploadStore, nil)

	r.POST("/sections/:id/products", asUser("user-1", "raw-token"), h.CreateProduct)

	return r, uploadStore
}

func TestCreateProduct(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string]string
		image      []byte
		wantStatus int
		wantCode   string
	}{
		{
			name:       "valid product",
			fields:     map[string]string{"name": "Cola", "description": "ice cold", "price": "2.50"},
			image:      pngBytes,
			wantStatus: http.StatusCreated,
		},
		{
			// zero is a legitimate price (free item)
			name:       "zero price",
			fields:     map[string]string{"name": "Tap water", "price": "0"},
			image:      pngBytes,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "negative price",
			fields:     map[string]string{"name": "Cola", "price": "-1"},
			image:      pngBytes,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_input",
		},
		{
			name:       "missing price",
			fields:     map[string]string{"name": "Cola"},
			image:      pngBytes,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_input",
		},
		{
			name:       "missing name",
			fields:     map[string]string{"price": "2.50"},
			image:      pngBytes,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_input",
		},
		{
			name:       "missing image",
			fields:     map[string]string{"name": "Cola", "price": "2.50"},
			image:      nil,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_input",
		},
		{
			name:       "image is not an image",
			fields:     map[string]string{"name": "Cola", "price": "2.50"},
			image:      []byte("definitely not pixels"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_input",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var created *product.Product

			store := &fakeProductStore{
				createFn: func(ctx context.Context, p product.Product) error {
					created = &p
					return nil
				},
			}

			r, _ := newProductsRouter(t, store, &fakeGuard{})

			body, contentType := productForm(t, tc.fields, tc.image)

			rec := doRequest(t, r, http.MethodPost, "/sections/"+ownedSectionID+"/products", body, map[string]string{
				"Content-Type": contentType,
			})

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
				t.Fatal("product was never written")
			}

			if created.SectionID != ownedSectionID {
				t.Fatalf("product attached to %q, want %q", created.SectionID, ownedSectionID)
			}

			if created.ImagePath == "" {
				t.Fatal("product has no image path")
			}
		})
	}
}

func TestCreateProductDeniesForeignAndMissingSectionsAlike(t *testing.T) {
	tests := []struct {
		name      string
		sectionID string
		guardErr  error
		wantCalls int
	}{
		{
			name:      "someone else's section",
			sectionID: ownedSectionID,
			guardErr:  guard.ErrForbidden,
			wantCalls: 1,
		},
		{
			name:      "section that does not exist",
			sectionID: ownedSectionID,
			guardErr:  guard.ErrForbidden,
			wantCalls: 1,
		},
		{
			// malformed ids never reach the store
			name:      "malformed section id",
			sectionID: "not-a-uuid",
			wantCalls: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := &fakeGuard{
				ensureFn: func(ctx context.Context, userID, sectionID string) error {
					return tc.guardErr
				},
			}

			r, _ := newProductsRouter(t, &fakeProductStore{}, g)

			body, contentType := productForm(t, map[string]string{"name": "Cola", "price": "2.50"}, pngBytes)

			rec := doRequest(t, r, http.MethodPost, "/sections/"+tc.sectionID+"/products", body, map[string]string{
				"Content-Type": contentType,
			})

			if rec.Code != http.StatusForbidden {
				t.Fatalf("got status %d, want 403 (body: %s)", rec.Code, rec.Body.String())
			}

			if code := errorCode(t, rec); code != "forbidden" {
				t.Fatalf("got error code %q, want forbidden", code)
			}

			if g.calls != tc.wantCalls {
				t.Fatalf("guard consulted %d times, want %d", g.calls, tc.wantCalls)
			}
		})
	}
}

func TestCreateProductRemovesImageWhenRowWriteFails(t *testing.T) {
	store := &fakeProductStore{
		createFn: func(ctx context.Context, p product.Product) error {
			return errors.New("insert failed")
		},
	}

	r, uploadStore := newProductsRouter(t, store, &fakeGuard{})

	body, contentType := productForm(t, map[string]string{"name": "Cola", "price": "2.50"}, pngBytes)

	rec := doRequest(t, r, http.MethodPost, "/sections/"+ownedSectionID+"/products", body, map[string]string{
		"Content-Type": contentType,
	})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500", rec.Code)
	}

	entries, err := os.ReadDir(uploadStore.Dir())

	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	if len(entries) != 0 {
		t.Fatalf("%d files left after failed insert", len(entries))
	}
}
