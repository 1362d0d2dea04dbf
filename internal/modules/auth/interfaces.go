package auth

import (
	"context"

	"recipebox/internal/domain"
)

type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, int64, error)
	Update(ctx context.Context, u *domain.User) error
	UpdateAvatar(ctx context.Context, userID int64, avatar *string) error
}

type jwtService interface {
	GenerateToken(userID int64, isAdmin bool) (string, error)
}
