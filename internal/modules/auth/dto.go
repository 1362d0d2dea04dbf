package auth

import (
	"recipebox/internal/domain"
	"recipebox/internal/pkg/images"
)

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

type SetAvatarRequest struct {
	Avatar string `json:"avatar"`
}

type TokenResponse struct {
	AuthToken string `json:"auth_token"`
}

// UserResponse is the read shape of a user; IsSubscribed is relative to
// the requesting viewer.
type UserResponse struct {
	Email        string  `json:"email"`
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

func ToUserResponse(u *domain.User, isSubscribed bool, store *images.Store) UserResponse {
	resp := UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
	if u.Avatar != nil && *u.Avatar != "" && store != nil {
		url := store.URL(*u.Avatar)
		resp.Avatar = &url
	}
	return resp
}
