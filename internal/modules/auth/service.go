package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"recipebox/internal/domain"
)

// Service contains the business logic for accounts: registration,
// login, password and avatar changes.
type Service struct {
	users UserRepositoryInterface
	jwt   jwtService
}

func NewService(users UserRepositoryInterface, jwt jwtService) *Service {
	return &Service{users: users, jwt: jwt}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	exists, err = s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Username:     strings.TrimSpace(req.Username),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		// unique index closes the window between check and insert
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateField(ctx, email, user.Username)
		}
		return nil, err
	}

	return user, nil
}

// duplicateField decides which unique index a racing insert tripped by
// re-running the existence checks, so the error lands on the right
// payload field.
func (s *Service) duplicateField(ctx context.Context, email, username string) error {
	if exists, err := s.users.ExistsByEmail(ctx, email); err == nil && exists {
		return ErrEmailAlreadyExists
	}
	if exists, err := s.users.ExistsByUsername(ctx, username); err == nil && exists {
		return ErrUsernameAlreadyExists
	}
	return ErrEmailAlreadyExists
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (string, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.jwt.GenerateToken(user.ID, user.IsAdmin)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *Service) SetPassword(ctx context.Context, userID int64, req SetPasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hash)
	return s.users.Update(ctx, user)
}

// SetAvatar stores the new avatar path and returns the previous one so
// the caller can remove the file.
func (s *Service) SetAvatar(ctx context.Context, userID int64, relPath string) (previous string, err error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.Avatar != nil {
		previous = *user.Avatar
	}

	if err := s.users.UpdateAvatar(ctx, userID, &relPath); err != nil {
		return "", err
	}
	return previous, nil
}

func (s *Service) DeleteAvatar(ctx context.Context, userID int64) (previous string, err error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.Avatar != nil {
		previous = *user.Avatar
	}

	if err := s.users.UpdateAvatar(ctx, userID, nil); err != nil {
		return "", err
	}
	return previous, nil
}
