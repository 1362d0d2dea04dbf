package subscription

import (
	"context"

	"recipebox/internal/domain"
)

type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ListSubscribedAuthors(ctx context.Context, subscriberID int64, limit, offset int) ([]domain.User, int64, error)
}

type RecipeRepositoryInterface interface {
	ListByAuthor(ctx context.Context, authorID int64, limit int) ([]domain.Recipe, error)
	CountByAuthor(ctx context.Context, authorID int64) (int64, error)
}
