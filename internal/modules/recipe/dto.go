package recipe

import (
	"recipebox/internal/domain"
	"recipebox/internal/modules/auth"
	"recipebox/internal/pkg/images"
)

// RecipeInput is the write shape: tag ids and {ingredient id, amount}
// pairs instead of nested objects, image as an optional data URI.
type RecipeInput struct {
	Ingredients []IngredientAmountInput `json:"ingredients"`
	Tags        []int64                 `json:"tags"`
	Image       string                  `json:"image"`
	Name        string                  `json:"name" validate:"required,max=256"`
	Text        string                  `json:"text" validate:"required"`
	CookingTime int                     `json:"cooking_time"`
}

type IngredientAmountInput struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// RecipeIngredientResponse flattens the join row with its ingredient.
type RecipeIngredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse is the read shape, annotated for the viewer.
type RecipeResponse struct {
	ID               int64                      `json:"id"`
	Tags             []domain.Tag               `json:"tags"`
	Author           auth.UserResponse          `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// ShortRecipeResponse is the compact shape used by toggle responses and
// subscription listings.
type ShortRecipeResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// RelationSets holds the viewer's prefetched relation ids so a page of
// recipes renders without per-row lookups.
type RelationSets struct {
	Favorited  map[int64]struct{}
	InCart     map[int64]struct{}
	Subscribed map[int64]struct{}
}

func (s RelationSets) favorited(recipeID int64) bool {
	_, ok := s.Favorited[recipeID]
	return ok
}

func (s RelationSets) inCart(recipeID int64) bool {
	_, ok := s.InCart[recipeID]
	return ok
}

func (s RelationSets) subscribed(authorID int64) bool {
	_, ok := s.Subscribed[authorID]
	return ok
}

func ToRecipeResponse(r *domain.Recipe, sets RelationSets, store *images.Store) RecipeResponse {
	resp := RecipeResponse{
		ID:               r.ID,
		Tags:             r.Tags,
		Ingredients:      make([]RecipeIngredientResponse, 0, len(r.Ingredients)),
		IsFavorited:      sets.favorited(r.ID),
		IsInShoppingCart: sets.inCart(r.ID),
		Name:             r.Name,
		Image:            store.URL(r.Image),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
	if resp.Tags == nil {
		resp.Tags = []domain.Tag{}
	}

	if r.Author != nil {
		resp.Author = auth.ToUserResponse(r.Author, sets.subscribed(r.AuthorID), store)
	}

	for _, item := range r.Ingredients {
		ri := RecipeIngredientResponse{
			ID:     item.IngredientID,
			Amount: item.Amount,
		}
		if item.Ingredient != nil {
			ri.Name = item.Ingredient.Name
			ri.MeasurementUnit = item.Ingredient.MeasurementUnit
		}
		resp.Ingredients = append(resp.Ingredients, ri)
	}

	return resp
}

func ToShortRecipeResponse(r *domain.Recipe, store *images.Store) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       store.URL(r.Image),
		CookingTime: r.CookingTime,
	}
}
