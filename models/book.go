package models

import "time"

type Book struct {
	ID              int64     `json:"book_id" gorm:"column:book_id;primaryKey"`
	Title           string    `json:"title" gorm:"not null;index"`
	Author          string    `json:"author" gorm:"not null;index"`
	Category        string    `json:"category" gorm:"index"`
	Image           string    `json:"image"`
	TotalCopies     int       `json:"total_copies" gorm:"not null"`
	AvailableCopies int       `json:"available_copies" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
