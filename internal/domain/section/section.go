package section

import (
	"errors"
	"time"

	"github.com/ricmelo/menuhub/internal/domain/product"
)

type Section struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"` // ownership is internal; never exposed
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WithProducts is the home/menu listing shape: a section plus its products
// in insertion order.
type WithProducts struct {
	Section
	Products []product.Product `json:"products"`
}

var ErrNotFound = errors.New("section not found")

type CreateSectionRequest struct {
	Name string `json:"name" binding:"required,min=1,max=80"`
}
