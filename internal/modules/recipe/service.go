package recipe

import (
	"context"
	"errors"
	"fmt"

	"recipebox/internal/domain"
	"recipebox/internal/pkg/permission"
	"recipebox/internal/repository"
)

// Service validates and persists recipe mutations and runs the
// favorite/cart toggles and the shopping-list aggregation.
type Service struct {
	recipes     RecipeRepositoryInterface
	tags        TagRepositoryInterface
	ingredients IngredientRepositoryInterface
	favorites   repository.RelationRepository[domain.Favorite]
	cart        repository.RelationRepository[domain.ShoppingCartEntry]
	subs        repository.RelationRepository[domain.Subscription]
}

func NewService(
	recipes RecipeRepositoryInterface,
	tags TagRepositoryInterface,
	ingredients IngredientRepositoryInterface,
	favorites repository.RelationRepository[domain.Favorite],
	cart repository.RelationRepository[domain.ShoppingCartEntry],
	subs repository.RelationRepository[domain.Subscription],
) *Service {
	return &Service{
		recipes:     recipes,
		tags:        tags,
		ingredients: ingredients,
		favorites:   favorites,
		cart:        cart,
		subs:        subs,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Recipe, error) {
	return s.recipes.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f repository.RecipeFilters) ([]domain.Recipe, int64, error) {
	return s.recipes.List(ctx, f)
}

// Sets prefetches the viewer's favorite, cart and subscription id-sets
// in three queries, once per request.
func (s *Service) Sets(ctx context.Context, viewerID int64) (RelationSets, error) {
	sets := RelationSets{
		Favorited:  map[int64]struct{}{},
		InCart:     map[int64]struct{}{},
		Subscribed: map[int64]struct{}{},
	}
	if viewerID == 0 {
		return sets, nil
	}

	var err error
	if sets.Favorited, err = s.favorites.TargetIDSet(ctx, viewerID); err != nil {
		return sets, err
	}
	if sets.InCart, err = s.cart.TargetIDSet(ctx, viewerID); err != nil {
		return sets, err
	}
	if sets.Subscribed, err = s.subs.TargetIDSet(ctx, viewerID); err != nil {
		return sets, err
	}
	return sets, nil
}

// Create validates the payload and persists the recipe with its tag and
// ingredient associations in one transaction. imagePath is the already
// normalized stored file, empty when the payload carried no image.
func (s *Service) Create(ctx context.Context, authorID int64, input RecipeInput, imagePath string) (*domain.Recipe, error) {
	tagIDs, items, verr := s.validatePayload(ctx, input)
	if verr != nil {
		return nil, verr
	}
	if imagePath == "" {
		return nil, fieldError("image", "An image is required.")
	}

	recipe := &domain.Recipe{
		AuthorID:    authorID,
		Name:        input.Name,
		Text:        input.Text,
		Image:       imagePath,
		CookingTime: input.CookingTime,
	}

	if err := s.recipes.Create(ctx, recipe, tagIDs, items); err != nil {
		return nil, err
	}

	return s.recipes.GetByID(ctx, recipe.ID)
}

// Update replaces the recipe's fields and its entire tag and ingredient
// sets. Only the author or a privileged viewer may call it. An absent
// image keeps the existing one.
func (s *Service) Update(ctx context.Context, viewer permission.Viewer, recipeID int64, input RecipeInput, imagePath string) (*domain.Recipe, error) {
	existing, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	if err := permission.Check(permission.Recipes, permission.ActionUpdate, viewer, existing.AuthorID); err != nil {
		return nil, err
	}

	tagIDs, items, verr := s.validatePayload(ctx, input)
	if verr != nil {
		return nil, verr
	}
	if imagePath == "" {
		if existing.Image == "" {
			return nil, fieldError("image", "An image is required.")
		}
		imagePath = existing.Image
	}

	updated := &domain.Recipe{
		ID:          existing.ID,
		AuthorID:    existing.AuthorID,
		Name:        input.Name,
		Text:        input.Text,
		Image:       imagePath,
		CookingTime: input.CookingTime,
	}

	if err := s.recipes.Update(ctx, updated, tagIDs, items); err != nil {
		return nil, err
	}

	return s.recipes.GetByID(ctx, recipeID)
}

// Delete removes the recipe and returns it so the caller can clean up
// the stored image.
func (s *Service) Delete(ctx context.Context, viewer permission.Viewer, recipeID int64) (*domain.Recipe, error) {
	existing, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	if err := permission.Check(permission.Recipes, permission.ActionDelete, viewer, existing.AuthorID); err != nil {
		return nil, err
	}

	if err := s.recipes.Delete(ctx, recipeID); err != nil {
		return nil, err
	}

	return existing, nil
}

// validatePayload runs the ordered checks: tags, then ingredients, then
// cooking time. The first failing group is reported; nothing has been
// written at that point.
func (s *Service) validatePayload(ctx context.Context, input RecipeInput) ([]int64, []domain.RecipeIngredient, *ValidationError) {
	if len(input.Tags) == 0 {
		return nil, nil, fieldError("tags", "Provide at least one tag.")
	}
	seenTags := make(map[int64]struct{}, len(input.Tags))
	for _, id := range input.Tags {
		if _, dup := seenTags[id]; dup {
			return nil, nil, fieldError("tags", "Tags must not repeat.")
		}
		seenTags[id] = struct{}{}
	}
	tags, err := s.tags.GetByIDs(ctx, input.Tags)
	if err != nil {
		return nil, nil, fieldError("tags", "Failed to resolve tags.")
	}
	if len(tags) != len(input.Tags) {
		return nil, nil, fieldError("tags", "Tag not found.")
	}

	if len(input.Ingredients) == 0 {
		return nil, nil, fieldError("ingredients", "Provide at least one ingredient.")
	}
	seenIngredients := make(map[int64]struct{}, len(input.Ingredients))
	ingredientIDs := make([]int64, 0, len(input.Ingredients))
	for _, item := range input.Ingredients {
		if _, dup := seenIngredients[item.ID]; dup {
			return nil, nil, fieldError("ingredients", "Ingredients must not repeat.")
		}
		seenIngredients[item.ID] = struct{}{}
		ingredientIDs = append(ingredientIDs, item.ID)

		if item.Amount < domain.IngredientAmountMin {
			return nil, nil, fieldError("ingredients", "Amount must be at least 1.")
		}
		if item.Amount > domain.IngredientAmountMax {
			return nil, nil, fieldError("ingredients",
				fmt.Sprintf("Amount must not exceed %d.", domain.IngredientAmountMax))
		}
	}
	resolved, err := s.ingredients.GetByIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, nil, fieldError("ingredients", "Failed to resolve ingredients.")
	}
	if len(resolved) != len(ingredientIDs) {
		return nil, nil, fieldError("ingredients", "Ingredient not found.")
	}

	if input.CookingTime < domain.CookingTimeMin {
		return nil, nil, fieldError("cooking_time", "Cooking time must be at least 1 minute.")
	}

	items := make([]domain.RecipeIngredient, 0, len(input.Ingredients))
	for _, item := range input.Ingredients {
		items = append(items, domain.RecipeIngredient{
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}

	return input.Tags, items, nil
}

// AddFavorite puts the recipe into the user's favorites; a repeated add
// fails deterministically.
func (s *Service) AddFavorite(ctx context.Context, userID, recipeID int64) (*domain.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	if _, err := s.favorites.Add(ctx, userID, recipeID); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrAlreadyFavorited
		}
		return nil, err
	}

	return recipe, nil
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, recipeID int64) error {
	if _, err := s.recipes.GetByID(ctx, recipeID); err != nil {
		return err
	}

	if err := s.favorites.Remove(ctx, userID, recipeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFavorited
		}
		return err
	}
	return nil
}

func (s *Service) AddToCart(ctx context.Context, userID, recipeID int64) (*domain.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	if _, err := s.cart.Add(ctx, userID, recipeID); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrAlreadyInCart
		}
		return nil, err
	}

	return recipe, nil
}

func (s *Service) RemoveFromCart(ctx context.Context, userID, recipeID int64) error {
	if _, err := s.recipes.GetByID(ctx, recipeID); err != nil {
		return err
	}

	if err := s.cart.Remove(ctx, userID, recipeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotInCart
		}
		return err
	}
	return nil
}

// CartRecipes lists every recipe currently in the user's cart.
func (s *Service) CartRecipes(ctx context.Context, userID int64) ([]domain.Recipe, error) {
	recipes, _, err := s.recipes.List(ctx, repository.RecipeFilters{InCartOf: userID})
	return recipes, err
}

// ShoppingList aggregates the user's cart into summed, alphabetically
// ordered lines. ErrCartEmpty is the explicit empty signal so callers
// can answer with "cart is empty" rather than a blank file.
func (s *Service) ShoppingList(ctx context.Context, userID int64) ([]repository.ShoppingItem, error) {
	items, err := s.recipes.ShoppingList(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}
	return items, nil
}
