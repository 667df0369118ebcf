package models

import "time"

// ReservationStatus represents all possible states of a book reservation
type ReservationStatus string

const (
	StatusActive    ReservationStatus = "active"
	StatusExtended  ReservationStatus = "extended"
	StatusReturned  ReservationStatus = "returned"
	StatusOverdue   ReservationStatus = "overdue"
	StatusCancelled ReservationStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusActive, StatusExtended, StatusReturned, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

type Reservation struct {
	ID              int64             `json:"reservation_id" gorm:"column:reservation_id;primaryKey"`
	UserID          string            `json:"user_id" gorm:"index;not null;size:36"`
	BookID          int64             `json:"book_id" gorm:"index;not null"`
	Book            *Book             `json:"book,omitempty" gorm:"foreignKey:BookID;references:ID"`
	ReservationDate time.Time         `json:"reservation_date" gorm:"not null"`
	DueDate         time.Time         `json:"due_date" gorm:"not null;index"`
	ReturnDate      *time.Time        `json:"return_date"`
	Status          ReservationStatus `json:"status" gorm:"not null;default:'active'"`
	Extended        bool              `json:"extended" gorm:"not null;default:false"`
	ReminderSent    bool              `json:"reminder_sent" gorm:"not null;default:false"`
}

// BorrowedBook is one row of the librarian's borrowed-books listing: a
// reservation joined with its reader and book.
type BorrowedBook struct {
	ReservationID   int64             `json:"reservation_id" db:"reservation_id"`
	UserID          string            `json:"user_id" db:"user_id"`
	FirstName       string            `json:"first_name" db:"first_name"`
	LastName        string            `json:"last_name" db:"last_name"`
	Email           string            `json:"email" db:"email"`
	BookID          int64             `json:"book_id" db:"book_id"`
	Title           string            `json:"title" db:"title"`
	Author          string            `json:"author" db:"author"`
	ReservationDate time.Time         `json:"reservation_date" db:"reservation_date"`
	DueDate         time.Time         `json:"due_date" db:"due_date"`
	Status          ReservationStatus `json:"status" db:"status"`
	Extended        bool              `json:"extended" db:"extended"`
}
