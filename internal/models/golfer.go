package models

import (
	"time"

	"github.com/google/uuid"
)

// GolferScore is one golfer's live line on the current leaderboard.
// PlayerID is the feed's identifier and is globally unique, so a golfer
// row survives across tournaments; the row is attached to the active
// tournament via TournamentID and detached (never deleted) when the feed
// stops returning the player.
type GolferScore struct {
	PlayerID          string     `gorm:"primaryKey" json:"player_id"`
	TournamentID      *uuid.UUID `gorm:"type:uuid;index" json:"tournament_id"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	IsAmateur         bool       `gorm:"default:false" json:"is_amateur"`
	Status            string     `json:"status"`
	Position          string     `json:"position"`
	Total             string     `json:"total"`
	CurrentRoundScore string     `json:"current_round_score"`
	Thru              string     `json:"thru"`
	CurrentHole       *int       `json:"current_hole"`
	StartingHole      *int       `json:"starting_hole"`
	RoundComplete     bool       `gorm:"default:false" json:"round_complete"`
	CurrentRound      *int       `json:"current_round"`
	TeeTime           string     `json:"tee_time"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (GolferScore) TableName() string {
	return "golfer_scores"
}

func (g *GolferScore) FullName() string {
	return g.FirstName + " " + g.LastName
}
