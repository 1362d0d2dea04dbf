package reference

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"recipebox/internal/domain"
	"recipebox/internal/middleware"
	"recipebox/internal/pkg/permission"
	"recipebox/internal/pkg/response"
	"recipebox/internal/pkg/validator"
	"recipebox/internal/repository"
)

// Handler serves the read-mostly reference data: tags and ingredients.
// Neither endpoint paginates, mirroring how clients consume them (tag
// pickers and typeahead ingredient search).
type Handler struct {
	tags        *repository.TagRepository
	ingredients *repository.IngredientRepository
}

func NewHandler(tags *repository.TagRepository, ingredients *repository.IngredientRepository) *Handler {
	return &Handler{tags: tags, ingredients: ingredients}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	tags := rg.Group("/tags")
	{
		tags.GET("/", h.ListTags)
		tags.GET("/:id", h.GetTag)
		tags.POST("/", middleware.RequireAuth(), h.CreateTag)
	}

	ingredients := rg.Group("/ingredients")
	{
		ingredients.GET("/", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
		ingredients.POST("/", middleware.RequireAuth(), h.CreateIngredient)
	}
}

// ListTags handles GET /api/tags/
func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list tags")
		return
	}
	response.Success(c, http.StatusOK, tags)
}

// GetTag handles GET /api/tags/:id
func (h *Handler) GetTag(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusNotFound, "Tag not found")
		return
	}

	tag, err := h.tags.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "Tag not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to load tag")
		return
	}

	response.Success(c, http.StatusOK, tag)
}

// CreateTag handles POST /api/tags/ (admin only).
func (h *Handler) CreateTag(c *gin.Context) {
	if err := permission.Check(permission.Reference, permission.ActionCreate, middleware.Viewer(c), 0); err != nil {
		response.Error(c, http.StatusForbidden, "Only administrators may add tags")
		return
	}

	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Malformed request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.FieldErrors(c, http.StatusBadRequest, fields)
		return
	}

	tag := &domain.Tag{Name: req.Name, Slug: req.Slug}
	if err := h.tags.Create(c.Request.Context(), tag); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			response.Error(c, http.StatusBadRequest, "This tag already exists")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to create tag")
		return
	}

	response.Success(c, http.StatusCreated, tag)
}

// ListIngredients handles GET /api/ingredients/?name=<prefix> with a
// case-insensitive prefix match on the ingredient name.
func (h *Handler) ListIngredients(c *gin.Context) {
	ingredients, err := h.ingredients.Search(c.Request.Context(), c.Query("name"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list ingredients")
		return
	}
	response.Success(c, http.StatusOK, ingredients)
}

// GetIngredient handles GET /api/ingredients/:id
func (h *Handler) GetIngredient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusNotFound, "Ingredient not found")
		return
	}

	ing, err := h.ingredients.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "Ingredient not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to load ingredient")
		return
	}

	response.Success(c, http.StatusOK, ing)
}

// CreateIngredient handles POST /api/ingredients/ (admin only).
func (h *Handler) CreateIngredient(c *gin.Context) {
	if err := permission.Check(permission.Reference, permission.ActionCreate, middleware.Viewer(c), 0); err != nil {
		response.Error(c, http.StatusForbidden, "Only administrators may add ingredients")
		return
	}

	var req CreateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Malformed request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.FieldErrors(c, http.StatusBadRequest, fields)
		return
	}

	ing := &domain.Ingredient{Name: req.Name, MeasurementUnit: req.MeasurementUnit}
	if err := h.ingredients.Create(c.Request.Context(), ing); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			response.Error(c, http.StatusBadRequest, "This ingredient already exists")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to create ingredient")
		return
	}

	response.Success(c, http.StatusCreated, ing)
}
