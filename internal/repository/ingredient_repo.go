package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"recipebox/internal/domain"
)

type IngredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

// Search lists ingredients, optionally narrowed by a case-insensitive
// name prefix.
func (r *IngredientRepository) Search(ctx context.Context, namePrefix string) ([]domain.Ingredient, error) {
	q := r.db.WithContext(ctx).Model(&domain.Ingredient{})

	if prefix := strings.TrimSpace(namePrefix); prefix != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, escapeLike(strings.ToLower(prefix))+"%")
	}

	var ingredients []domain.Ingredient
	err := q.Order("name").Find(&ingredients).Error
	return ingredients, err
}

// escapeLike neutralizes LIKE wildcards so the prefix matches
// literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

func (r *IngredientRepository) GetByID(ctx context.Context, id int64) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	if err := r.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}

func (r *IngredientRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Ingredient, error) {
	var ingredients []domain.Ingredient
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error
	return ingredients, err
}

func (r *IngredientRepository) Create(ctx context.Context, ing *domain.Ingredient) error {
	err := r.db.WithContext(ctx).Create(ing).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}
