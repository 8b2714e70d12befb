package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleReader = "reader"
	RoleAdmin  = "admin"
)

type User struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	Login        string    `gorm:"uniqueIndex;not null" json:"login"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Role         string    `gorm:"default:'reader';not null" json:"role"` // fixed at creation, no self-promotion
	Age          int       `json:"age,omitempty"`
	Gender       string    `json:"gender,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

func (User) TableName() string {
	return "users"
}

// IsAdmin compares the role case-insensitively, so "Admin" rows created by hand still count.
func (user *User) IsAdmin() bool {
	return strings.EqualFold(user.Role, RoleAdmin)
}
