package auth

import (
	"errors"
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

const avatarSubdir = "users/avatars"

type Handler struct {
	service  *Service
	subs     repository.RelationRepository[domain.Subscription]
	store    *images.Store
	pageSize int
}

func NewHandler(service *Service, subs repository.RelationRepository[domain.Subscription], store *images.Store, pageSize int) *Handler {
	return &Handler{service: service, subs: subs, store: store, pageSize: pageSize}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.POST("/", h.Register)
		users.GET("/", h.List)
		users.GET("/me", middleware.RequireAuth(), h.Me)
		users.POST("/set_password", middleware.RequireAuth(), h.SetPassword)
		users.PUT("/me/avatar", middleware.RequireAuth(), h.SetAvatar)
		users.DELETE("/me/avatar", middleware.RequireAuth(), h.DeleteAvatar)
		users.GET("/:id", h.GetByID)
	}

	token := rg.Group("/auth/token")
	{
		token.POST("/login", h.Login)
		token.POST("/logout", middleware.RequireAuth(), h.Logout)
	}
}

// Register handles POST /api/users/
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Malformed request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.FieldErrors(c, http.StatusBadRequest, fields)
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			response.FieldErrors(c, http.StatusBadRequest, map[string]string{"email": err.Error()})
		case errors.Is(err, ErrUsernameAlreadyExists):
			response.FieldErrors(c, http.StatusBadRequest, map[string]string{"username": err.Error()})
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to register user")
		}
		return
	}

	response.Success(c, http.StatusCreated, ToUserResponse(user, false, h.store))
}

// Login handles POST /api/auth/token/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Malformed request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.FieldErrors(c, http.StatusBadRequest, fields)
		return
	}

	token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to log in")
		return
	}

	response.Success(c, http.StatusOK, TokenResponse{AuthToken: token})
}

// Logout handles POST /api/auth/token/logout. Tokens are stateless, the
// client simply discards it.
func (h *Handler) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// List handles GET /api/users/
func (h *Handler) List(c *gin.Context) {
	p := pagination.FromQuery(c, h.pageSize)

	users, total, err := h.service.List(c.Request.Context(), p.Limit, p.Offset())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list users")
		return
	}

	subscribed, err := h.subscribedSet(c)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list users")
		return
	}

	results := make([]UserResponse, 0, len(users))
	for i := range users {
		_, isSub := subscribed[users[i].ID]
		results = append(results, ToUserResponse(&users[i], isSub, h.store))
	}

	response.Success(c, http.StatusOK, pagination.NewPage(c, total, p, results))
}

// GetByID handles GET /api/users/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusNotFound, "User not found")
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to load user")
		return
	}

	subscribed, err := h.subscribedSet(c)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load user")
		return
	}
	_, isSub := subscribed[user.ID]

	response.Success(c, http.StatusOK, ToUserResponse(user, isSub, h.store))
}

// Me handles GET /api/users/me
func (h *Handler) Me(c *gin.Context) {
	if !h.allow(c, permission.ActionCurrentUser) {
		return
	}
	viewer := middleware.Viewer(c)

	user, err := h.service.GetByID(c.Request.Context(), viewer.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	response.Success(c, http.StatusOK, ToUserResponse(user, false, h.store))
}

// SetPassword handles POST /api/users/set_password
func (h *Handler) SetPassword(c *gin.Context) {
	if !h.allow(c, permission.ActionSetPassword) {
		return
	}

	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Malformed request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.FieldErrors(c, http.StatusBadRequest, fields)
		return
	}

	viewer := middleware.Viewer(c)
	if err := h.service.SetPassword(c.Request.Context(), viewer.ID, req); err != nil {
		if errors.Is(err, ErrWrongPassword) {
			response.FieldErrors(c, http.StatusBadRequest, map[string]string{"current_password": err.Error()})
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to change password")
		return
	}

	c.Status(http.StatusNoContent)
}

// SetAvatar handles PUT /api/users/me/avatar, accepting either a
// multipart "avatar" file or a JSON body with a data-URI image.
func (h *Handler) SetAvatar(c *gin.Context) {
	if !h.allow(c, permission.ActionSetAvatar) {
		return
	}

	relPath, err := h.normalizeAvatar(c)
	if err != nil {
		response.FieldErrors(c, http.StatusBadRequest, map[string]string{"avatar": err.Error()})
		return
	}

	viewer := middleware.Viewer(c)
	previous, err := h.service.SetAvatar(c.Request.Context(), viewer.ID, relPath)
	if err != nil {
		h.store.Remove(relPath)
		response.Error(c, http.StatusInternalServerError, "Failed to update avatar")
		return
	}
	h.store.Remove(previous)

	url := h.store.URL(relPath)
	response.Success(c, http.StatusOK, gin.H{"avatar": url})
}

// DeleteAvatar handles DELETE /api/users/me/avatar
func (h *Handler) DeleteAvatar(c *gin.Context) {
	if !h.allow(c, permission.ActionSetAvatar) {
		return
	}
	viewer := middleware.Viewer(c)

	previous, err := h.service.DeleteAvatar(c.Request.Context(), viewer.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to delete avatar")
		return
	}
	h.store.Remove(previous)

	c.Status(http.StatusNoContent)
}

func (h *Handler) normalizeAvatar(c *gin.Context) (string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("avatar")
		if err != nil {
			return "", errors.New("a file is required")
		}
		return h.store.SaveMultipart(fh, avatarSubdir)
	}

	var req SetAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Avatar == "" {
		return "", errors.New("a file is required")
	}
	return h.store.SaveDataURI(req.Avatar, avatarSubdir)
}

// allow consults the user permission table before dispatch. RequireAuth
// already rejects anonymous requests on these routes; the table is the
// authoritative action -> capability mapping.
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

// subscribedSet prefetches the ids of authors the viewer follows so
// list rendering never queries per row.
func (h *Handler) subscribedSet(c *gin.Context) (map[int64]struct{}, error) {
	viewer := middleware.Viewer(c)
	if !viewer.Authenticated() {
		return map[int64]struct{}{}, nil
	}
	return h.subs.TargetIDSet(c.Request.Context(), viewer.ID)
}
