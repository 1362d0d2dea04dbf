package subscription

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"recipebox/internal/middleware"
	"recipebox/internal/pkg/images"
	"recipebox/internal/pkg/pagination"
	"recipebox/internal/pkg/permission"
	"recipebox/internal/pkg/response"
)

type Handler struct {
	service  *Service
	store    *images.Store
	pageSize int
}

func NewHandler(service *Service, store *images.Store, pageSize int) *Handler {
	return &Handler{service: service, store: store, pageSize: pageSize}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.GET("/subscriptions", middleware.RequireAuth(), h.List)
		users.POST("/:id/subscribe", middleware.RequireAuth(), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.RequireAuth(), h.Unsubscribe)
	}
}

// List handles GET /api/users/subscriptions
func (h *Handler) List(c *gin.Context) {
	if !h.allow(c, permission.ActionSubscriptions) {
		return
	}
	viewer := middleware.Viewer(c)
	p := pagination.FromQuery(c, h.pageSize)

	cards, total, err := h.service.List(c.Request.Context(), viewer.ID, p.Limit, p.Offset(), recipesLimit(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list subscriptions")
		return
	}

	results := make([]AuthorResponse, 0, len(cards))
	for _, card := range cards {
		// Every author on this page is subscribed by definition.
		results = append(results, ToAuthorResponse(card, true, h.store))
	}

	response.Success(c, http.StatusOK, pagination.NewPage(c, total, p, results))
}

// Subscribe handles POST /api/users/:id/subscribe
func (h *Handler) Subscribe(c *gin.Context) {
	if !h.allow(c, permission.ActionSubscribe) {
		return
	}
	authorID, ok := h.authorID(c)
	if !ok {
		return
	}

	viewer := middleware.Viewer(c)
	card, err := h.service.Subscribe(c.Request.Context(), viewer.ID, authorID, recipesLimit(c))
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, ToAuthorResponse(*card, true, h.store))
}

// Unsubscribe handles DELETE /api/users/:id/subscribe
func (h *Handler) Unsubscribe(c *gin.Context) {
	if !h.allow(c, permission.ActionSubscribe) {
		return
	}
	authorID, ok := h.authorID(c)
	if !ok {
		return
	}

	viewer := middleware.Viewer(c)
	if err := h.service.Unsubscribe(c.Request.Context(), viewer.ID, authorID); err != nil {
		h.renderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// allow consults the user permission table before dispatch.
func (h *Handler) allow(c *gin.Context, action permission.Action) bool {
	viewer := middleware.Viewer(c)
	if err := permission.Check(permission.Users, action, viewer, viewer.ID); err != nil {
		if errors.Is(err, permission.ErrUnauthenticated) {
			response.Error(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		} else {
			response.Error(c, http.StatusForbidden, "You do not have permission to perform this action.")
		}
		return false
	}
	return true
}

func (h *Handler) authorID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusNotFound, "User not found")
		return 0, false
	}
	return id, true
}

func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.Error(c, http.StatusNotFound, "User not found")
	case errors.Is(err, ErrSelfSubscription),
		errors.Is(err, ErrAlreadySubscribed),
		errors.Is(err, ErrNotSubscribed):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}

func recipesLimit(c *gin.Context) int {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
