package product

import (
	"errors"
	"mime/multipart"
	"time"
)

type Product struct {
	ID          string    `json:"id"`
	SectionID   string    `json:"sectionId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	ImagePath   string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("product not found")

// Multipart form payload. Price is a pointer so that 0 still satisfies
// "required" while a missing field does not.
type CreateProductRequest struct {
	Name        string                `form:"name" binding:"required,min=1,max=120"`
	Description string                `form:"description" binding:"omitempty,max=1000"`
	Price       *float64              `form:"price" binding:"required,gte=0"`
	Image       *multipart.FileHeader `form:"image" binding:"required"`
}
