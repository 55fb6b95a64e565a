package service

import (
	"context"
	"errors"

	"booklist/internal/microservices/http-api/models"
	"booklist/internal/microservices/http-api/repository"
	"booklist/internal/openlibrary"
)

var ErrAlreadyLiked = errors.New("book already liked")

type LikeService interface {
	AddLike(ctx context.Context, userID int64, bookKey string) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Like, error)
	ListByOtherUsers(ctx context.Context, excludedUserID int64) ([]models.Like, error)
}

type likeService struct {
	likeRepo repository.LikeRepository
}

func NewLikeService(likeRepo repository.LikeRepository) LikeService {
	return &likeService{likeRepo: likeRepo}
}

func (s *likeService) AddLike(ctx context.Context, userID int64, bookKey string) (int64, error) {
	key := openlibrary.NormalizeWorkKey(bookKey)
	if key == "" {
		return 0, ErrInvalidBookKey
	}

	exists, err := s.likeRepo.Exists(ctx, userID, key)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrAlreadyLiked
	}

	like := &models.Like{UserID: userID, BookKey: key}
	if err := s.likeRepo.Create(ctx, like); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return 0, ErrAlreadyLiked
		}
		return 0, err
	}
	return like.ID, nil
}

func (s *likeService) ListByUser(ctx context.Context, userID int64) ([]models.Like, error) {
	return s.likeRepo.ListByUser(ctx, userID)
}

// ListByOtherUsers powers the "what other readers like" page.
func (s *likeService) ListByOtherUsers(ctx context.Context, excludedUserID int64) ([]models.Like, error) {
	return s.likeRepo.ListExcludingUser(ctx, excludedUserID)
}
