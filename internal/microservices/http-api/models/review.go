package models

import "time"

// Review is a free-text review a user wrote about a catalog work.
// Several reviews per (user, book) are allowed.
type Review struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	BookKey   string    `json:"book_key" gorm:"not null;index:idx_reviews_book_created,priority:1"`
	Body      string    `json:"body" gorm:"not null;type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index:idx_reviews_book_created,priority:2,sort:desc"`

	// Associations
	User User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}

func (Review) TableName() string {
	return "reviews"
}
