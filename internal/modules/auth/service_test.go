package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"recipebox/internal/domain"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) UpdateAvatar(ctx context.Context, userID int64, avatar *string) error {
	args := m.Called(ctx, userID, avatar)
	return args.Error(0)
}

type mockJWTService struct {
	mock.Mock
}

func (m *mockJWTService) GenerateToken(userID int64, isAdmin bool) (string, error) {
	args := m.Called(userID, isAdmin)
	return args.String(0), args.Error(1)
}

func TestService_Register_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	userRepo.On("ExistsByEmail", mock.Anything, "test@example.com").Return(false, nil)
	userRepo.On("ExistsByUsername", mock.Anything, "tester").Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	service := NewService(userRepo, jwtSvc)

	user, err := service.Register(context.Background(), RegisterRequest{
		Email:     "Test@Example.com",
		Username:  "tester",
		FirstName: "Test",
		LastName:  "User",
		Password:  "securepass123",
	})

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "test@example.com", user.Email)
	assert.NotEqual(t, "securepass123", user.PasswordHash)

	userRepo.AssertExpectations(t)
}

func TestService_Register_EmailExists(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	userRepo.On("ExistsByEmail", mock.Anything, "exists@example.com").Return(true, nil)

	service := NewService(userRepo, jwtSvc)

	_, err := service.Register(context.Background(), RegisterRequest{
		Email:    "exists@example.com",
		Username: "someone",
	})

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Register_UsernameExists(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	userRepo.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	userRepo.On("ExistsByUsername", mock.Anything, "taken").Return(true, nil)

	service := NewService(userRepo, jwtSvc)

	_, err := service.Register(context.Background(), RegisterRequest{
		Email:    "new@example.com",
		Username: "taken",
	})

	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Register_UsernameRaceReportedOnUsername(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	// Pre-insert checks pass, but a concurrent registration grabs the
	// username before our insert commits.
	userRepo.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	userRepo.On("ExistsByUsername", mock.Anything, "taken").Return(false, nil).Once()
	userRepo.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)
	userRepo.On("ExistsByUsername", mock.Anything, "taken").Return(true, nil)

	service := NewService(userRepo, jwtSvc)

	_, err := service.Register(context.Background(), RegisterRequest{
		Email:    "new@example.com",
		Username: "taken",
		Password: "securepass123",
	})

	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)
}

func TestService_Login_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	existing := &domain.User{
		ID:           10,
		Email:        "user@example.com",
		PasswordHash: string(hashed),
	}

	userRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(existing, nil)
	jwtSvc.On("GenerateToken", int64(10), false).Return("login-token", nil)

	service := NewService(userRepo, jwtSvc)

	token, err := service.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	})

	assert.NoError(t, err)
	assert.Equal(t, "login-token", token)
}

func TestService_Login_WrongPassword(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("correct-pass"), bcrypt.DefaultCost)
	existing := &domain.User{
		ID:           10,
		Email:        "user@example.com",
		PasswordHash: string(hashed),
	}

	userRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(existing, nil)

	service := NewService(userRepo, jwtSvc)

	_, err := service.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "wrong-pass",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	jwtSvc.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
}

func TestService_SetPassword_WrongCurrent(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("old-pass"), bcrypt.DefaultCost)
	existing := &domain.User{ID: 3, PasswordHash: string(hashed)}

	userRepo.On("GetByID", mock.Anything, int64(3)).Return(existing, nil)

	service := NewService(userRepo, jwtSvc)

	err := service.SetPassword(context.Background(), 3, SetPasswordRequest{
		CurrentPassword: "not-old-pass",
		NewPassword:     "brand-new-pass",
	})

	assert.ErrorIs(t, err, ErrWrongPassword)
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestService_SetAvatar_ReturnsPrevious(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	old := "users/avatars/old.png"
	existing := &domain.User{ID: 7, Avatar: &old}

	userRepo.On("GetByID", mock.Anything, int64(7)).Return(existing, nil)
	userRepo.On("UpdateAvatar", mock.Anything, int64(7), mock.Anything).Return(nil)

	service := NewService(userRepo, jwtSvc)

	previous, err := service.SetAvatar(context.Background(), 7, "users/avatars/new.png")

	assert.NoError(t, err)
	assert.Equal(t, "users/avatars/old.png", previous)
	userRepo.AssertExpectations(t)
}
