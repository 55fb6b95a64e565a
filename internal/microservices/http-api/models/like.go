package models

import "time"

// Like records that a user marked a catalog work as liked.
// (user_id, book_key) is unique.
type Like struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_likes_user_book" json:"user_id"`
	BookKey   string    `gorm:"not null;uniqueIndex:idx_likes_user_book" json:"book_key"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"user,omitempty"`
}

func (Like) TableName() string {
	return "likes"
}
