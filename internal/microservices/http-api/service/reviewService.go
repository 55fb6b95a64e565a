package service

import (
	"context"
	"errors"
	"strings"

	"booklist/internal/microservices/http-api/models"
	"booklist/internal/microservices/http-api/repository"
	"booklist/internal/openlibrary"
)

var (
	ErrEmptyReview    = errors.New("review text is required")
	ErrInvalidBookKey = errors.New("invalid book key")
)

type ReviewService interface {
	AddReview(ctx context.Context, userID int64, bookKey, text string) (int64, error)
	ListReviews(ctx context.Context, bookKey string, limit int) ([]models.Review, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo}
}

// AddReview stores the submitted text verbatim for (userID, bookKey).
func (s *reviewService) AddReview(ctx context.Context, userID int64, bookKey, text string) (int64, error) {
	key := openlibrary.NormalizeWorkKey(bookKey)
	if key == "" {
		return 0, ErrInvalidBookKey
	}
	if strings.TrimSpace(text) == "" {
		return 0, ErrEmptyReview
	}

	review := &models.Review{
		UserID:  userID,
		BookKey: key,
		Body:    text,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return 0, err
	}
	return review.ID, nil
}

// ListReviews returns the newest reviews first, at most repository.MaxReviewsPerBook.
func (s *reviewService) ListReviews(ctx context.Context, bookKey string, limit int) ([]models.Review, error) {
	return s.reviewRepo.ListByBook(ctx, openlibrary.NormalizeWorkKey(bookKey), limit)
}
