package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Mrcarnj/MajorPools-sub000/internal/models"
	"github.com/Mrcarnj/MajorPools-sub000/internal/scoring"
)

// LeaderboardService builds the live pool standings on demand from stored
// entry scores. Ranking and payout math live in the scoring package; this is
// a thin consumer that adds caching.
type LeaderboardService struct {
	db           *gorm.DB
	cache        *CacheService
	logger       *logrus.Logger
	entryFee     int
	donationRate float64
	cacheTTL     time.Duration
}

func NewLeaderboardService(db *gorm.DB, cache *CacheService, logger *logrus.Logger, entryFee int, donationRate float64) *LeaderboardService {
	return &LeaderboardService{
		db:           db,
		cache:        cache,
		logger:       logger,
		entryFee:     entryFee,
		donationRate: donationRate,
		cacheTTL:     time.Minute,
	}
}

// LeaderboardSnapshot is the ranked pool standings plus the live payout
// schedule the standings would produce if the tournament ended now.
type LeaderboardSnapshot struct {
	Tournament  string           `json:"tournament"`
	Status      string           `json:"status"`
	CutScore    string           `json:"cut_score,omitempty"`
	TotalPool   int              `json:"total_pool"`
	Donation    int              `json:"donation"`
	PayablePool int              `json:"payable_pool"`
	Rows        []LeaderboardRow `json:"rows"`
	GeneratedAt time.Time        `json:"generated_at"`
}

type LeaderboardRow struct {
	Position  string `json:"position"`
	EntryName string `json:"entry_name"`
	Total     string `json:"total"`
	Payout    int    `json:"payout"`
	HasPaid   bool   `json:"has_paid"`
}

// Snapshot returns the current standings, cached briefly since every pool
// participant polls the same view between sync cycles.
func (s *LeaderboardService) Snapshot(ctx context.Context) (*LeaderboardSnapshot, error) {
	tournament, err := ActiveTournament(ctx, s.db)
	if err != nil {
		return nil, err
	}

	cacheKey := LeaderboardCacheKey(tournament.ID.String())
	if s.cache != nil {
		var cached LeaderboardSnapshot
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	var entries []models.Entry
	err = s.db.WithContext(ctx).
		Where("tournament_id = ?", tournament.ID).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	scored := make([]scoring.ScoredEntry, 0, len(entries))
	byName := make(map[string]*models.Entry, len(entries))
	for i := range entries {
		entry := &entries[i]
		byName[entry.EntryName] = entry
		scored = append(scored, scoring.ScoredEntry{
			EntryName: entry.EntryName,
			Score:     entry.CalculatedScore,
		})
	}

	ranked := scoring.Rank(scored)
	dist := scoring.Distribute(ranked, s.entryFee, s.donationRate)

	rows := make([]LeaderboardRow, 0, len(ranked))
	for _, r := range ranked {
		entry := byName[r.EntryName]
		rows = append(rows, LeaderboardRow{
			Position:  r.Label(),
			EntryName: r.EntryName,
			Total:     entry.EntryTotal,
			Payout:    dist.Payouts[r.EntryName],
			HasPaid:   entry.HasPaid,
		})
	}

	snapshot := &LeaderboardSnapshot{
		Tournament:  tournament.Name,
		Status:      tournament.Status,
		CutScore:    tournament.CutScore,
		TotalPool:   dist.TotalPool,
		Donation:    dist.Donation,
		PayablePool: dist.PayablePool,
		Rows:        rows,
		GeneratedAt: time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, snapshot, s.cacheTTL); err != nil {
			s.logger.WithError(err).Debug("Failed to cache leaderboard snapshot")
		}
	}

	return snapshot, nil
}
