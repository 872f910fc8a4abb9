package models

import "time"

type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusApproved MatchStatus = "approved"
	MatchStatusRunning  MatchStatus = "running"
	MatchStatusFinished MatchStatus = "finished"
	// MatchStatusBye is terminal and set only at generation time.
	MatchStatusBye MatchStatus = "bye"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusPending, MatchStatusApproved, MatchStatusRunning, MatchStatusFinished, MatchStatusBye:
		return true
	}
	return false
}

// MatchSlot identifies one of the two corners of a match.
type MatchSlot string

const (
	SlotRed  MatchSlot = "red"
	SlotBlue MatchSlot = "blue"
)

// Match is the atomic unit of competition, shared by both formats.
// Sequence is the global run-of-show number ("partai"): assigned once at
// approval, unique and monotonic across combat and performance alike.
// NextMatchRedID/NextMatchBlueID are self-references: at most one is set per
// match and names the successor slot the winner advances into.
type Match struct {
	ID               int         `json:"id" db:"id"`
	BracketID        int         `json:"bracket_id" db:"bracket_id"`
	Round            int         `json:"round" db:"round"`
	OrderInRound     int         `json:"order_in_round" db:"order_in_round"`
	RedCompetitorID  *int        `json:"red_competitor_id,omitempty" db:"red_competitor_id"`
	BlueCompetitorID *int        `json:"blue_competitor_id,omitempty" db:"blue_competitor_id"`
	ScoreRed         *float64    `json:"score_red,omitempty" db:"score_red"`
	ScoreBlue        *float64    `json:"score_blue,omitempty" db:"score_blue"`
	WinnerID         *int        `json:"winner_id,omitempty" db:"winner_id"`
	OfficialID       *int        `json:"official_id,omitempty" db:"official_id"`
	Status           MatchStatus `json:"status" db:"status"`
	IsApproved       bool        `json:"is_approved" db:"is_approved"`
	Sequence         *int        `json:"sequence,omitempty" db:"sequence"`
	NextMatchRedID   *int        `json:"next_match_red_id,omitempty" db:"next_match_red_id"`
	NextMatchBlueID  *int        `json:"next_match_blue_id,omitempty" db:"next_match_blue_id"`
	Notes            *string     `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`

	RedCompetitor  *Competitor `json:"red_competitor,omitempty" db:"-"`
	BlueCompetitor *Competitor `json:"blue_competitor,omitempty" db:"-"`
	Winner         *Competitor `json:"winner,omitempty" db:"-"`
	Official       *Official   `json:"official,omitempty" db:"-"`
}

// OccupiedBy reports whether competitorID sits in one of the match's slots.
func (m *Match) OccupiedBy(competitorID int) bool {
	if m.RedCompetitorID != nil && *m.RedCompetitorID == competitorID {
		return true
	}
	if m.BlueCompetitorID != nil && *m.BlueCompetitorID == competitorID {
		return true
	}
	return false
}
