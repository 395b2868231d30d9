package user

import (
	"errors"
	"time"
)

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"` // never expose hash in JSON
	RestaurantName string    `json:"restaurantName,omitempty"`
	LogoPath       string    `json:"logo,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

type RegisterRequest struct {
	Username       string `json:"username" binding:"required,min=3,max=60"`
	Password       string `json:"password" binding:"required,min=6,max=72"`
	RestaurantName string `json:"restaurantName" binding:"omitempty,max=120"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProfileUpdate is a partial update; nil fields are left unchanged.
type ProfileUpdate struct {
	RestaurantName *string
	LogoPath       *string
}
