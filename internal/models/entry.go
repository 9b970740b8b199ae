package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry is one participant's picks: eight golfers drafted 2+2+2+1+1 across
// five odds-based tiers. CalculatedScore is always derived by the scorer,
// never user-supplied; EntryTotal is the human-facing "to par" figure (or
// "CUT") and is never used for ranking.
type Entry struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TournamentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tournament_name_key,priority:1" json:"tournament_id"`
	EntryName    string    `gorm:"not null" json:"entry_name"`
	// NameKey is EntryName lowercased with whitespace collapsed; uniqueness
	// within a tournament is enforced on it rather than the raw name.
	NameKey string `gorm:"not null;uniqueIndex:idx_tournament_name_key,priority:2" json:"-"`
	Email   string `gorm:"not null" json:"email"`

	Tier1Golfer1 string `json:"tier1_golfer1"`
	Tier1Golfer2 string `json:"tier1_golfer2"`
	Tier2Golfer1 string `json:"tier2_golfer1"`
	Tier2Golfer2 string `json:"tier2_golfer2"`
	Tier3Golfer1 string `json:"tier3_golfer1"`
	Tier3Golfer2 string `json:"tier3_golfer2"`
	Tier4Golfer1 string `json:"tier4_golfer1"`
	Tier5Golfer1 string `json:"tier5_golfer1"`

	CalculatedScore decimal.Decimal `gorm:"type:numeric(24,12)" json:"calculated_score"`
	EntryTotal      string          `json:"entry_total"`
	EntryPosition   string          `json:"entry_position"`
	Payout          int             `gorm:"default:0" json:"payout"`
	HasPaid         bool            `gorm:"default:false" json:"has_paid"`

	// GolferResults is a snapshot of per-golfer lines written at tournament
	// completion, so final standings render without re-joining golfer_scores.
	GolferResults datatypes.JSON `json:"golfer_results,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Entry) TableName() string {
	return "entries"
}

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *Entry) BeforeSave(tx *gorm.DB) error {
	e.NameKey = NormalizeEntryName(e.EntryName)
	return nil
}

// GolferSlots returns the eight picks in tier order.
func (e *Entry) GolferSlots() []string {
	return []string{
		e.Tier1Golfer1, e.Tier1Golfer2,
		e.Tier2Golfer1, e.Tier2Golfer2,
		e.Tier3Golfer1, e.Tier3Golfer2,
		e.Tier4Golfer1,
		e.Tier5Golfer1,
	}
}

// NormalizeEntryName collapses runs of whitespace and lowercases, so
// "john smith" and " John  Smith " identify the same entry.
func NormalizeEntryName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
