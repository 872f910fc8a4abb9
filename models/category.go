package models

import "time"

// Category is an age bracket ("Usia Dini", "Remaja", "Dewasa", ...).
type Category struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
