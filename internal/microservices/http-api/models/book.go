package models

import (
	"time"

	"gorm.io/datatypes"
)

// Book ids are chosen by the admin creating the record and are never generated.
type Book struct {
	ID           int64                       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title        string                      `gorm:"not null" json:"title"`
	AuthorID     string                      `gorm:"type:uuid;not null;index" json:"author_id"`
	CollectionID *string                     `gorm:"type:uuid;index" json:"collection_id,omitempty"`
	Genre        string                      `gorm:"index" json:"genre,omitempty"`
	Image        string                      `gorm:"not null" json:"image"`
	Tags         datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"tags"`
	Release      string                      `json:"release,omitempty"`
	Score        string                      `gorm:"not null" json:"score"`
	Description  string                      `json:"description,omitempty"`
	IsNewUpdate  bool                        `gorm:"not null;default:false" json:"isNewUpdate"`
	IsBeingRead  bool                        `gorm:"not null;default:false" json:"isBeingRead"`
	IsTrending   bool                        `gorm:"not null;default:false" json:"isTrending"`
	IsPopular    bool                        `gorm:"not null;default:false" json:"isPopular"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// BookFlag names one of the independent display flags on a Book.
type BookFlag string

const (
	FlagNewUpdate BookFlag = "isNewUpdate"
	FlagBeingRead BookFlag = "isBeingRead"
	FlagTrending  BookFlag = "isTrending"
	FlagPopular   BookFlag = "isPopular"
)

// Column returns the database column backing the flag, or "" for an unknown flag.
func (f BookFlag) Column() string {
	switch f {
	case FlagNewUpdate:
		return "is_new_update"
	case FlagBeingRead:
		return "is_being_read"
	case FlagTrending:
		return "is_trending"
	case FlagPopular:
		return "is_popular"
	}
	return ""
}

func (f BookFlag) Valid() bool {
	return f.Column() != ""
}

// HasFlag reports whether b has flag f set.
func (b *Book) HasFlag(f BookFlag) bool {
	switch f {
	case FlagNewUpdate:
		return b.IsNewUpdate
	case FlagBeingRead:
		return b.IsBeingRead
	case FlagTrending:
		return b.IsTrending
	case FlagPopular:
		return b.IsPopular
	}
	return false
}

// Clone returns a deep copy so callers never share slices or pointers with the store.
func (b Book) Clone() Book {
	if b.Tags != nil {
		b.Tags = append(datatypes.JSONSlice[string](nil), b.Tags...)
	}
	if b.CollectionID != nil {
		id := *b.CollectionID
		b.CollectionID = &id
	}
	return b
}
