package repository

import (
	"context"
	"fmt"

	"booklist/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// MaxReviewsPerBook caps how many reviews a book page ever loads.
const MaxReviewsPerBook = 100

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByBook(ctx context.Context, bookKey string, limit int) ([]models.Review, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create a new review
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// ListByBook returns the newest reviews for a book, never more than MaxReviewsPerBook.
func (r *reviewRepository) ListByBook(ctx context.Context, bookKey string, limit int) ([]models.Review, error) {
	if limit <= 0 || limit > MaxReviewsPerBook {
		limit = MaxReviewsPerBook
	}

	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("book_key = ?", bookKey).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
