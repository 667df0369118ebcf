package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer  UserRole = "customer"
	RoleLibrarian UserRole = "librarian"
)

// User is the profile row mirrored from the identity record at signup.
// It shares its identifier with Identity.
type User struct {
	ID        string    `json:"user_id" gorm:"column:user_id;primaryKey;size:36"`
	Email     string    `json:"email" gorm:"index;not null"`
	Role      UserRole  `json:"role" gorm:"not null;default:'customer'"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Language  string    `json:"language" gorm:"not null;default:'en'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity holds the credentials owned by the identity provider.
type Identity struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RevokedSession marks a signed-out session token by its jti
type RevokedSession struct {
	ID        string    `gorm:"primaryKey;size:27"`
	UserID    string    `gorm:"index;size:36"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}
