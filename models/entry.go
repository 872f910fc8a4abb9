package models

import "time"

// CompetitionFormat separates the two disciplines of the championship.
// Both share the same bracket model; match validation rules differ by format.
type CompetitionFormat string

const (
	// FormatCombat is head-to-head fighting (tanding); integer scores.
	FormatCombat CompetitionFormat = "combat"
	// FormatPerformance is panel-judged routines (seni); fractional scores.
	FormatPerformance CompetitionFormat = "performance"
)

func (f CompetitionFormat) Valid() bool {
	return f == FormatCombat || f == FormatPerformance
}

// Performance disciplines. Combat entries carry a weight class instead.
const (
	DisciplineSingle       = "single"
	DisciplinePair         = "pair"
	DisciplineTeam         = "team"
	DisciplineCreativeSolo = "creative_solo"
)

// Entry is one competition entry (a weight class for combat, a performance
// category for seni). Exactly one bracket belongs to each entry.
type Entry struct {
	ID              int               `json:"id" db:"id"`
	Format          CompetitionFormat `json:"format" db:"format"`
	Name            string            `json:"name" db:"name"`
	Class           *string           `json:"class,omitempty" db:"class"`
	Discipline      *string           `json:"discipline,omitempty" db:"discipline"`
	Gender          string            `json:"gender" db:"gender"`
	CategoryID      int               `json:"category_id" db:"category_id"`
	RegisteredCount int               `json:"registered_count" db:"-"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`

	Category *Category `json:"category,omitempty" db:"-"`
}
