package types

import (
	"fmt"
	"strings"
)

// ScoringMode selects which point values the scoring engine supplies
type ScoringMode string

const (
	ScoringModeActual    ScoringMode = "actual"
	ScoringModeProjected ScoringMode = "projected"
	ScoringModeFinal     ScoringMode = "final"
)

// ParseScoringMode validates a mode string; an empty string means projected
func ParseScoringMode(raw string) (ScoringMode, error) {
	switch mode := ScoringMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "":
		return ScoringModeProjected, nil
	case ScoringModeActual, ScoringModeProjected, ScoringModeFinal:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown scoring mode %q", raw)
	}
}

// RosterStatus is a roster member's availability
type RosterStatus string

const (
	RosterStatusActive RosterStatus = "active"
	RosterStatusIR     RosterStatus = "ir"
	RosterStatusTaxi   RosterStatus = "taxi"
)

// IsReserved reports whether the player is held out of lineup optimization
func (s RosterStatus) IsReserved() bool {
	return s == RosterStatusIR || s == RosterStatusTaxi
}

// BestBallPlayer is one entry of an ad-hoc optimization request
type BestBallPlayer struct {
	ID       int64   `json:"id"`
	Position string  `json:"position" binding:"required"`
	Points   float64 `json:"points"`
}

// OptimizeLineupRequest is the body of the stateless optimize endpoint
type OptimizeLineupRequest struct {
	SlotCounts SlotRequirements `json:"slot_counts" binding:"required"`
	Players    []BestBallPlayer `json:"players" binding:"max=500,dive"`
}

// ReserveAssignment is a reserved player re-attached to a stored lineup unchanged
type ReserveAssignment struct {
	PlayerID int64  `json:"player_id"`
	Slot     string `json:"slot"`
}
