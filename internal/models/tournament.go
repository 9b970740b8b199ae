package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tournament status values as reported by the leaderboard feed. "Official"
// is the terminal state set by the admin completion action.
const (
	TournamentNotStarted = "Not Started"
	TournamentInProgress = "In Progress"
	TournamentOfficial   = "Official"
)

// Tournament represents one major tournament tracked by the pool. At most
// one tournament has IsActive set; the invariant is enforced by the admin
// activate action, not the database, so readers treat zero or multiple
// active rows as handled states.
type Tournament struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PGAID        string    `gorm:"column:pga_id;uniqueIndex;not null" json:"pga_tournament_id"`
	Name         string    `gorm:"not null" json:"name"`
	Year         int       `gorm:"not null" json:"year"`
	StartDate    time.Time `gorm:"index" json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	IsActive     bool      `gorm:"default:false;index" json:"is_active"`
	Status       string    `gorm:"type:varchar(50);default:'Not Started'" json:"status"`
	CurrentRound int       `gorm:"default:0" json:"current_round"`
	CutScore     string    `json:"cut_score"`
	CourseName   string    `json:"course_name"`
	Purse        float64   `json:"purse"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Tournament) TableName() string {
	return "tournaments"
}

func (t *Tournament) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Started reports whether play is under way. Withdrawal notifications are
// only sent before this point; mid-round withdrawals are scored silently.
func (t *Tournament) Started() bool {
	return t.Status == TournamentInProgress || t.Status == TournamentOfficial
}
