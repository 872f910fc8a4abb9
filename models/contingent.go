package models

import "time"

// Contingent is the delegation a competitor belongs to (club or region).
type Contingent struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	District  *string   `json:"district,omitempty" db:"district"`
	Province  *string   `json:"province,omitempty" db:"province"`
	LogoKey   *string   `json:"-" db:"logo_key"`
	LogoURL   *string   `json:"logo_url,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
