package models

import "time"

// Official is a referee (combat) or judging panel chair (performance)
// who can be attached to a match at approval time.
type Official struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
