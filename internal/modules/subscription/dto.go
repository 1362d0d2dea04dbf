package subscription

import (
	"recipebox/internal/domain"
	"recipebox/internal/modules/auth"
	"recipebox/internal/modules/recipe"
	"recipebox/internal/pkg/images"
)

// AuthorResponse extends the user shape with the author's recipes,
// optionally truncated by the recipes_limit query parameter.
type AuthorResponse struct {
	auth.UserResponse
	Recipes      []recipe.ShortRecipeResponse `json:"recipes"`
	RecipesCount int64                        `json:"recipes_count"`
}

// AuthorCard bundles what the response needs before rendering.
type AuthorCard struct {
	User         domain.User
	Recipes      []domain.Recipe
	RecipesCount int64
}

func ToAuthorResponse(card AuthorCard, isSubscribed bool, store *images.Store) AuthorResponse {
	resp := AuthorResponse{
		UserResponse: auth.ToUserResponse(&card.User, isSubscribed, store),
		Recipes:      make([]recipe.ShortRecipeResponse, 0, len(card.Recipes)),
		RecipesCount: card.RecipesCount,
	}
	for i := range card.Recipes {
		resp.Recipes = append(resp.Recipes, recipe.ToShortRecipeResponse(&card.Recipes[i], store))
	}
	return resp
}
