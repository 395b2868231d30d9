package section

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(userID string, req CreateSectionRequest) Section {
	now := time.Now().UTC()

	return Section{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
