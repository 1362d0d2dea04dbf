package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"recipebox/internal/domain"
	"recipebox/internal/middleware"
	"recipebox/internal/pkg/images"
	"recipebox/internal/pkg/pagination"
	"recipebox/internal/pkg/permission"
	"recipebox/internal/pkg/response"
	"recipebox/internal/pkg/validator"
	"recipebox/internal/repository"
)

const imageSubdir = "recipes/images"

type Handler struct {
	service  *Service
	store    *images.Store
	pageSize int
}

func NewHandler(service *Service, store *images.Store, pageSize int) *Handler {
	return &Handler{service: service, store: store, pageSize: pageSize}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	recipes := rg.Group("/recipes")
	{
		recipes.GET("/", h.List)
		recipes.POST("/", middleware.RequireAuth(), h.Create)
		recipes.GET("/shopping_cart", middleware.RequireAuth(), h.ShoppingCart)
		recipes.GET("/download_shopping_cart", middleware.RequireAuth(), h.DownloadShoppingCart)
		recipes.GET("/:id", h.Get)
		recipes.PATCH("/:id", middleware.RequireAuth(), h.Update)
		recipes.DELETE("/:id", middleware.RequireAuth(), h.Delete)
		recipes.GET("/:id/get-link", h.GetLink)
		recipes.POST("/:id/favorite", middleware.RequireAuth(), h.AddFavorite)
		recipes.DELETE("/:id/favorite", middleware.RequireAuth(), h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", middleware.RequireAuth(), h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", middleware.RequireAuth(), h.RemoveFromCart)
	}
}

// List handles GET /api/recipes/ with author, tag, favorite and cart
// filters.
func (h *Handler) List(c *gin.Context) {
	viewer := middleware.Viewer(c)
	p := pagination.FromQuery(c, h.pageSize)

	f := repository.RecipeFilters{
		TagSlugs: c.QueryArray("tags"),
		Limit:    p.Limit,
		Offset:   p.Offset(),
	}
	if author := c.Query("author"); author != "" {
		if id, err := strconv.ParseInt(author, 10, 64); err == nil {
			f.AuthorID = id
		}
	}
	// The favorite/cart filters only mean something for a known viewer.
	if viewer.Authenticated() {
		if c.Query("is_favorited") == "1" {
			f.FavoritedBy = viewer.ID
		}
		if c.Query("is_in_shopping_cart") == "1" {
			f.InCartOf = viewer.ID
		}
	}

	recipes, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list recipes")
		return
	}

	sets, err := h.service.Sets(c.Request.Context(), viewer.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list recipes")
		return
	}

	results := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		results = append(results, ToRecipeResponse(&recipes[i], sets, h.store))
	}

	response.Success(c, http.StatusOK, pagination.NewPage(c, total, p, results))
}

// Get handles GET /api/recipes/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	sets, err := h.service.Sets(c.Request.Context(), middleware.Viewer(c).ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load recipe")
		return
	}

	response.Success(c, http.StatusOK, ToRecipeResponse(recipe, sets, h.store))
}

// Create handles POST /api/recipes/
func (h *Handler) Create(c *gin.Context) {
	input, fh, ok := h.bindInput(c)
	if !ok {
		return
	}

	imagePath, err := h.normalizeImage(c, input.Image, fh)
	if err != nil {
		response.FieldErrors(c, http.StatusBadRequest, map[string]string{"image": err.Error()})
		return
	}

	viewer := middleware.Viewer(c)
	recipe, err := h.service.Create(c.Request.Context(), viewer.ID, *input, imagePath)
	if err != nil {
		h.store.Remove(imagePath)
		h.renderError(c, err)
		return
	}

	sets, err := h.service.Sets(c.Request.Context(), viewer.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load recipe")
		return
	}

	response.Success(c, http.StatusCreated, ToRecipeResponse(recipe, sets, h.store))
}

// Update handles PATCH /api/recipes/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}

	input, fh, ok := h.bindInput(c)
	if !ok {
		return
	}

	imagePath, err := h.normalizeImage(c, input.Image, fh)
	if err != nil {
		response.FieldErrors(c, http.StatusBadRequest, map[string]string{"image": err.Error()})
		return
	}

	viewer := middleware.Viewer(c)
	recipe, err := h.service.Update(c.Request.Context(), viewer, id, *input, imagePath)
	if err != nil {
		h.store.Remove(imagePath)
		h.renderError(c, err)
		return
	}

	sets, err := h.service.Sets(c.Request.Context(), viewer.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load recipe")
		return
	}

	response.Success(c, http.StatusOK, ToRecipeResponse(recipe, sets, h.store))
}

// Delete handles DELETE /api/recipes/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.service.Delete(c.Request.Context(), middleware.Viewer(c), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.store.Remove(recipe.Image)

	c.Status(http.StatusNoContent)
}

// GetLink handles GET /api/recipes/:id/get-link
func (h *Handler) GetLink(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}

	if _, err := h.service.Get(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	link := fmt.Sprintf("%s://%s/recipes/%d/", scheme, c.Request.Host, id)

	response.Success(c, http.StatusOK, gin.H{"short-link": link})
}

// AddFavorite handles POST /api/recipes/:id/favorite
func (h *Handler) AddFavorite(c *gin.Context) {
	h.addRelation(c, h.service.AddFavorite)
}

// RemoveFavorite handles DELETE /api/recipes/:id/favorite
func (h *Handler) RemoveFavorite(c *gin.Context) {
	h.removeRelation(c, h.service.RemoveFavorite)
}

// AddToCart handles POST /api/recipes/:id/shopping_cart
func (h *Handler) AddToCart(c *gin.Context) {
	h.addRelation(c, h.service.AddToCart)
}

// RemoveFromCart handles DELETE /api/recipes/:id/shopping_cart
func (h *Handler) RemoveFromCart(c *gin.Context) {
	h.removeRelation(c, h.service.RemoveFromCart)
}

// ShoppingCart handles GET /api/recipes/shopping_cart, listing the
// viewer's carted recipes in the compact shape.
func (h *Handler) ShoppingCart(c *gin.Context) {
	viewer := middleware.Viewer(c)

	recipes, err := h.service.CartRecipes(c.Request.Context(), viewer.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list cart")
		return
	}

	results := make([]ShortRecipeResponse, 0, len(recipes))
	for i := range recipes {
		results = append(results, ToShortRecipeResponse(&recipes[i], h.store))
	}

	response.Success(c, http.StatusOK, results)
}

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart
func (h *Handler) DownloadShoppingCart(c *gin.Context) {
	viewer := middleware.Viewer(c)

	items, err := h.service.ShoppingList(c.Request.Context(), viewer.ID)
	if err != nil {
		if errors.Is(err, ErrCartEmpty) {
			response.Error(c, http.StatusBadRequest, "Cart is empty.")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to build shopping list")
		return
	}

	content := RenderShoppingList(items)
	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

// The add/remove relation handlers only differ in the service call, so
// both toggles share these two helpers.
func (h *Handler) addRelation(c *gin.Context, add func(ctx context.Context, userID, recipeID int64) (*domain.Recipe, error)) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}

	viewer := middleware.Viewer(c)
	recipe, err := add(c.Request.Context(), viewer.ID, id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, ToShortRecipeResponse(recipe, h.store))
}

func (h *Handler) removeRelation(c *gin.Context, remove func(ctx context.Context, userID, recipeID int64) error) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}

	viewer := middleware.Viewer(c)
	if err := remove(c.Request.Context(), viewer.ID, id); err != nil {
		h.renderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// bindInput reads the write payload from either a JSON body or a
// multipart form carrying a "data" JSON field plus an "image" file.
func (h *Handler) bindInput(c *gin.Context) (*RecipeInput, *multipart.FileHeader, bool) {
	var input RecipeInput

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		raw := c.PostForm("data")
		if raw == "" || json.Unmarshal([]byte(raw), &input) != nil {
			response.Error(c, http.StatusBadRequest, "Malformed request body")
			return nil, nil, false
		}
		fh, _ := c.FormFile("image")
		if fields := validator.Validate(input); fields != nil {
			response.FieldErrors(c, http.StatusBadRequest, fields)
			return nil, nil, false
		}
		return &input, fh, true
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, "Malformed request body")
		return nil, nil, false
	}
	if fields := validator.Validate(input); fields != nil {
		response.FieldErrors(c, http.StatusBadRequest, fields)
		return nil, nil, false
	}
	return &input, nil, true
}

// normalizeImage turns whichever image representation arrived into one
// stored file path; empty input means no image was supplied.
func (h *Handler) normalizeImage(c *gin.Context, dataURI string, fh *multipart.FileHeader) (string, error) {
	if fh != nil {
		return h.store.SaveMultipart(fh, imageSubdir)
	}
	if dataURI != "" {
		return h.store.SaveDataURI(dataURI, imageSubdir)
	}
	return "", nil
}

func (h *Handler) recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusNotFound, "Recipe not found")
		return 0, false
	}
	return id, true
}

func (h *Handler) renderError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.FieldErrors(c, http.StatusBadRequest, verr.Fields)
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.Error(c, http.StatusNotFound, "Recipe not found")
	case errors.Is(err, permission.ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
	case errors.Is(err, permission.ErrForbidden):
		response.Error(c, http.StatusForbidden, "You do not have permission to perform this action.")
	case errors.Is(err, ErrAlreadyFavorited),
		errors.Is(err, ErrNotFavorited),
		errors.Is(err, ErrAlreadyInCart),
		errors.Is(err, ErrNotInCart):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}
