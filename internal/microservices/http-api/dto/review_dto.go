package dto

import (
	"time"

	"booklist/internal/microservices/http-api/models"
)

// ReviewForm for submitting a review
type ReviewForm struct {
	Review string `form:"review" binding:"required,max=5000"`
}

// ReviewResponse is a review as shown on a book page
type ReviewResponse struct {
	ID        int64
	UserID    int64
	Username  string
	Body      string
	CreatedAt time.Time
}

// FromModelToReviewResponse converts a Review model to ReviewResponse
func FromModelToReviewResponse(review *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID,
		UserID:    review.UserID,
		Username:  review.User.Username,
		Body:      review.Body,
		CreatedAt: review.CreatedAt,
	}
}
