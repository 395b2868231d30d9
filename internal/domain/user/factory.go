package user

import (
	"time"

	"github.com/google/uuid"
)

func NewFromRegisterRequest(req RegisterRequest, passwordHash string) User {
	now := time.Now().UTC()

	return User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		PasswordHash:   passwordHash,
		RestaurantName: req.RestaurantName,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
