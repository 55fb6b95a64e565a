package repository

import (
	"context"
	"fmt"

	"booklist/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type LikeRepository interface {
	Create(ctx context.Context, like *models.Like) error
	ListByUser(ctx context.Context, userID int64) ([]models.Like, error)
	ListExcludingUser(ctx context.Context, userID int64) ([]models.Like, error)
	Exists(ctx context.Context, userID int64, bookKey string) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("add like: %w", ErrDuplicate)
		}
		return fmt.Errorf("add like: %w", err)
	}
	return nil
}

func (r *likeRepository) ListByUser(ctx context.Context, userID int64) ([]models.Like, error) {
	var likes []models.Like
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&likes).Error; err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	return likes, nil
}

// ListExcludingUser returns what every other reader liked, with the reader preloaded.
func (r *likeRepository) ListExcludingUser(ctx context.Context, userID int64) ([]models.Like, error) {
	var likes []models.Like
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id <> ?", userID).
		Order("created_at DESC").
		Find(&likes).Error; err != nil {
		return nil, fmt.Errorf("list other likes: %w", err)
	}
	return likes, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID int64, bookKey string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND book_key = ?", userID, bookKey).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
