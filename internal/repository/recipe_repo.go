package repository

import (
	"context"

	"gorm.io/gorm"

	"recipebox/internal/domain"
)

// RecipeFilters narrows the recipe listing. Zero values mean "no
// filter"; TagSlugs matches recipes carrying any of the slugs.
type RecipeFilters struct {
	AuthorID    int64
	TagSlugs    []string
	FavoritedBy int64
	InCartOf    int64
	Limit       int
	Offset      int
}

// ShoppingItem is one aggregated line of a shopping list.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

type RecipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

func (r *RecipeRepository) preload(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

func (r *RecipeRepository) GetByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := r.preload(r.db.WithContext(ctx)).First(&recipe, id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Create persists the recipe row, its tag links and its ingredient join
// rows as one transaction. A failure in any step leaves nothing behind.
func (r *RecipeRepository) Create(ctx context.Context, recipe *domain.Recipe, tagIDs []int64, items []domain.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Ingredients").Create(recipe).Error; err != nil {
			return err
		}
		if err := replaceAssociations(tx, recipe.ID, tagIDs, items); err != nil {
			return err
		}
		return nil
	})
}

// Update rewrites the recipe columns and fully replaces both the tag
// set and the ingredient join rows in the same transaction.
func (r *RecipeRepository) Update(ctx context.Context, recipe *domain.Recipe, tagIDs []int64, items []domain.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Recipe{ID: recipe.ID}).
			Select("name", "text", "image", "cooking_time").
			Updates(map[string]any{
				"name":         recipe.Name,
				"text":         recipe.Text,
				"image":        recipe.Image,
				"cooking_time": recipe.CookingTime,
			}).Error
		if err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&domain.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Recipe{ID: recipe.ID}).Association("Tags").Clear(); err != nil {
			return err
		}

		return replaceAssociations(tx, recipe.ID, tagIDs, items)
	})
}

func replaceAssociations(tx *gorm.DB, recipeID int64, tagIDs []int64, items []domain.RecipeIngredient) error {
	tags := make([]domain.Tag, 0, len(tagIDs))
	for _, id := range tagIDs {
		tags = append(tags, domain.Tag{ID: id})
	}
	if err := tx.Model(&domain.Recipe{ID: recipeID}).Association("Tags").Append(tags); err != nil {
		return err
	}

	for i := range items {
		items[i].ID = 0
		items[i].RecipeID = recipeID
	}
	if len(items) > 0 {
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
	}

	return nil
}

func (r *RecipeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&domain.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&domain.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&domain.ShoppingCartEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Recipe{ID: id}).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&domain.Recipe{}, id).Error
	})
}

// List pages recipes newest first, applying the filters.
func (r *RecipeRepository) List(ctx context.Context, f RecipeFilters) ([]domain.Recipe, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&domain.Recipe{})
		if f.AuthorID != 0 {
			q = q.Where("recipes.author_id = ?", f.AuthorID)
		}
		if len(f.TagSlugs) > 0 {
			q = q.Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", f.TagSlugs)
		}
		if f.FavoritedBy != 0 {
			q = q.Joins("JOIN favorites ON favorites.recipe_id = recipes.id AND favorites.user_id = ?", f.FavoritedBy)
		}
		if f.InCartOf != 0 {
			q = q.Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipes.id AND shopping_cart_entries.user_id = ?", f.InCartOf)
		}
		return q
	}

	var total int64
	if err := base().Distinct("recipes.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []domain.Recipe
	q := base().
		Distinct("recipes.*").
		Order("recipes.pub_date DESC, recipes.id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := r.preload(q).Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, total, nil
}

// ListByAuthor returns the author's recipes, newest first, truncated to
// limit when limit > 0.
func (r *RecipeRepository) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]domain.Recipe, error) {
	q := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var recipes []domain.Recipe
	err := q.Find(&recipes).Error
	return recipes, err
}

func (r *RecipeRepository) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

// ShoppingList aggregates the user's cart: every ingredient row of
// every carted recipe, grouped by (name, unit), amounts summed, ordered
// alphabetically. A read-only query, identical results for an unchanged
// cart.
func (r *RecipeRepository) ShoppingList(ctx context.Context, userID int64) ([]ShoppingItem, error) {
	var items []ShoppingItem
	err := r.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&items).Error
	return items, err
}
