package recipe

import (
	"context"

	"recipebox/internal/domain"
	"recipebox/internal/repository"
)

type RecipeRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.Recipe, error)
	List(ctx context.Context, f repository.RecipeFilters) ([]domain.Recipe, int64, error)
	Create(ctx context.Context, recipe *domain.Recipe, tagIDs []int64, items []domain.RecipeIngredient) error
	Update(ctx context.Context, recipe *domain.Recipe, tagIDs []int64, items []domain.RecipeIngredient) error
	Delete(ctx context.Context, id int64) error
	ShoppingList(ctx context.Context, userID int64) ([]repository.ShoppingItem, error)
}

type TagRepositoryInterface interface {
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Tag, error)
}

type IngredientRepositoryInterface interface {
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Ingredient, error)
}
