package models

import "time"

// SavedBook is one entry of a user's saved set; the composite key keeps it a set.
// No foreign key to books, so deleting a book leaves saved entries in place.
type SavedBook struct {
	UserID  string    `gorm:"primaryKey;type:uuid" json:"user_id"`
	BookID  int64     `gorm:"primaryKey;autoIncrement:false" json:"book_id"`
	SavedAt time.Time `gorm:"autoCreateTime;index" json:"saved_at"`
}

func (SavedBook) TableName() string {
	return "saved_books"
}
