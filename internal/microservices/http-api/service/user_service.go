package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"booklist/internal/middleware/auth"
	"booklist/internal/microservices/http-api/dto"
	"booklist/internal/microservices/http-api/models"
	"booklist/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserService interface {
	List(ctx context.Context, query string) ([]models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User, form dto.ProfileForm) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	userRepo repository.UserRepository
	sessions repository.SessionStore
	logger   *slog.Logger
}

func NewUserService(userRepo repository.UserRepository, sessions repository.SessionStore, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{userRepo: userRepo, sessions: sessions, logger: logger}
}

// List returns all users, filtered by a username substring when query is set.
func (s *userService) List(ctx context.Context, query string) ([]models.User, error) {
	return s.userRepo.List(ctx, strings.TrimSpace(query))
}

func (s *userService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the form to user once the current password checks out.
func (s *userService) UpdateProfile(ctx context.Context, user *models.User, form dto.ProfileForm) (*models.User, error) {
	if err := auth.VerifyPassword(user.Password, form.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	username := strings.TrimSpace(form.Username)
	if username != user.Username {
		existing, err := s.userRepo.FindByUsername(ctx, username)
		if err == nil && existing.ID != user.ID {
			return nil, ErrNameInUse
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lookup username: %w", err)
		}
	}

	updated := *user
	updated.Username = username
	updated.FirstName = strings.TrimSpace(form.FirstName)
	updated.LastName = strings.TrimSpace(form.LastName)
	updated.Email = strings.TrimSpace(form.Email)

	if err := s.userRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrNameInUse
		}
		return nil, err
	}
	return &updated, nil
}

// Delete removes the user with their likes and reviews, then revokes their sessions.
func (s *userService) Delete(ctx context.Context, id int64) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.sessions.DeleteUser(ctx, id); err != nil {
		// the account is gone, stale sessions fail to resolve their user anyway
		s.logger.Warn("revoke sessions after delete", "user_id", id, "error", err)
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}
