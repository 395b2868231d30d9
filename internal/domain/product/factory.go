package product

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(sectionID, imagePath string, req CreateProductRequest) Product {
	now := time.Now().UTC()

	price := 0.0
	if req.Price != nil {
		price = *req.Price
	}

	return Product{
		ID:          uuid.NewString(),
		SectionID:   sectionID,
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		ImagePath:   imagePath,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
