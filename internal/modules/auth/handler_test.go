package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"recipebox/internal/domain"
	"recipebox/internal/pkg/images"
)

type mockSubscriptionRepo struct {
	mock.Mock
}

func (m *mockSubscriptionRepo) Add(ctx context.Context, ownerID, targetID int64) (*domain.Subscription, error) {
	args := m.Called(ctx, ownerID, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) Remove(ctx context.Context, ownerID, targetID int64) error {
	args := m.Called(ctx, ownerID, targetID)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) Exists(ctx context.Context, ownerID, targetID int64) (bool, error) {
	args := m.Called(ctx, ownerID, targetID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSubscriptionRepo) TargetIDSet(ctx context.Context, ownerID int64) (map[int64]struct{}, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]struct{}), args.Error(1)
}

func testHandler(t *testing.T) (*Handler, *mockUserRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userRepo := new(mockUserRepo)
	service := NewService(userRepo, new(mockJWTService))
	store := images.NewStore(t.TempDir(), "/media")
	return NewHandler(service, new(mockSubscriptionRepo), store, 6), userRepo
}

func anonymousContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func TestHandler_Me_AnonymousRejectedByPermissionTable(t *testing.T) {
	h, userRepo := testHandler(t)

	c, w := anonymousContext("GET", "/api/users/me")
	h.Me(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestHandler_SetPassword_AnonymousRejectedByPermissionTable(t *testing.T) {
	h, userRepo := testHandler(t)

	c, w := anonymousContext("POST", "/api/users/set_password")
	h.SetPassword(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestHandler_DeleteAvatar_AnonymousRejectedByPermissionTable(t *testing.T) {
	h, userRepo := testHandler(t)

	c, w := anonymousContext("DELETE", "/api/users/me/avatar")
	h.DeleteAvatar(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	userRepo.AssertNotCalled(t, "UpdateAvatar", mock.Anything, mock.Anything, mock.Anything)
}
