package models

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Competitor is an entrant. Inside the bracket engine only the ID matters;
// name and affiliation are owned by the registration side.
type Competitor struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Gender       Gender    `json:"gender" db:"gender"`
	ContingentID int       `json:"contingent_id" db:"contingent_id"`
	CategoryID   int       `json:"category_id" db:"category_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Contingent *Contingent `json:"contingent,omitempty" db:"-"`
	Category   *Category   `json:"category,omitempty" db:"-"`
}
