package models

import "time"

// BracketStatus mirrors the ENUM in the database.
type BracketStatus string

const (
	BracketStatusUncreated BracketStatus = "uncreated"
	BracketStatusPending   BracketStatus = "pending"
	BracketStatusRunning   BracketStatus = "running"
	BracketStatusFinished  BracketStatus = "finished"
)

func (s BracketStatus) Valid() bool {
	switch s {
	case BracketStatusUncreated, BracketStatusPending, BracketStatusRunning, BracketStatusFinished:
		return true
	}
	return false
}

// Bracket is the single-elimination tree for exactly one competition entry.
// Generation moves it to pending; running/finished are set by the operator.
type Bracket struct {
	ID        int               `json:"id" db:"id"`
	EntryID   int               `json:"entry_id" db:"entry_id"`
	Format    CompetitionFormat `json:"format" db:"format"`
	Name      string            `json:"name" db:"name"`
	Status    BracketStatus     `json:"status" db:"status"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`

	Entry *Entry `json:"entry,omitempty" db:"-"`
}
