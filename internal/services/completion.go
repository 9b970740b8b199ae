package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Mrcarnj/MajorPools-sub000/internal/models"
	"github.com/Mrcarnj/MajorPools-sub000/internal/scoring"
	"github.com/Mrcarnj/MajorPools-sub000/pkg/utils"
)

// CompletionService runs the admin one-shot that closes out a tournament:
// final ranking, payout allocation, per-entry snapshot, summary email, and
// the status flip to "Official". Re-running overwrites positions and payouts,
// it never accumulates them.
type CompletionService struct {
	db           *gorm.DB
	notifier     Notifier
	cache        *CacheService
	logger       *logrus.Logger
	entryFee     int
	donationRate float64
	summaryTopN  int
}

func NewCompletionService(db *gorm.DB, notifier Notifier, cache *CacheService, logger *logrus.Logger, entryFee int, donationRate float64) *CompletionService {
	return &CompletionService{
		db:           db,
		notifier:     notifier,
		cache:        cache,
		logger:       logger,
		entryFee:     entryFee,
		donationRate: donationRate,
		summaryTopN:  10,
	}
}

// CompletionSummary is what the admin endpoint returns.
type CompletionSummary struct {
	Tournament  string         `json:"tournament"`
	EntryCount  int            `json:"entry_count"`
	TotalPool   int            `json:"total_pool"`
	Donation    int            `json:"donation"`
	PayablePool int            `json:"payable_pool"`
	Standings   []ResultLine   `json:"standings"`
	Payouts     map[string]int `json:"payouts"`
}

// golferLine is one golfer's final line frozen onto the entry at completion.
type golferLine struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Total    string `json:"total"`
	Position string `json:"position"`
}

// Complete finalizes the tournament: scores every entry from the stored
// golfer state, ranks, allocates the pool, persists per-entry results, and
// emails the final standings.
func (s *CompletionService) Complete(ctx context.Context, tournamentID uuid.UUID) (*CompletionSummary, error) {
	var tournament models.Tournament
	err := s.db.WithContext(ctx).First(&tournament, "id = ?", tournamentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewAppError(utils.ErrCodeNotFound, "tournament not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}

	var entries []models.Entry
	err = s.db.WithContext(ctx).Where("tournament_id = ?", tournament.ID).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, utils.NewAppError(utils.ErrCodeValidation, "tournament has no entries to finalize")
	}

	var golfers []models.GolferScore
	err = s.db.WithContext(ctx).Where("tournament_id = ?", tournament.ID).Find(&golfers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load golfer scores: %w", err)
	}
	byPlayer := make(map[string]models.GolferScore, len(golfers))
	for _, g := range golfers {
		byPlayer[g.PlayerID] = g
	}

	// Score every entry from the freshest stored state so completion does
	// not depend on the last sync cycle having run.
	scored := make([]scoring.ScoredEntry, 0, len(entries))
	displays := make(map[string]string, len(entries))
	snapshots := make(map[string][]golferLine, len(entries))
	for i := range entries {
		entry := &entries[i]
		var results []scoring.GolferResult
		var lines []golferLine
		for _, id := range entry.GolferSlots() {
			golfer, ok := byPlayer[id]
			if !ok {
				lines = append(lines, golferLine{PlayerID: id, Position: "WD"})
				continue
			}
			results = append(results, scoring.GolferResult{
				PlayerID: golfer.PlayerID,
				Total:    golfer.Total,
				Position: golfer.Position,
			})
			lines = append(lines, golferLine{
				PlayerID: golfer.PlayerID,
				Name:     golfer.FullName(),
				Total:    golfer.Total,
				Position: golfer.Position,
			})
		}

		display, eligible := scoring.Display(results)
		displays[entry.EntryName] = scoring.FormatDisplay(display, eligible)
		snapshots[entry.EntryName] = lines
		scored = append(scored, scoring.ScoredEntry{
			EntryName: entry.EntryName,
			Score:     scoring.Composite(results),
		})
	}

	ranked := scoring.Rank(scored)
	dist := scoring.Distribute(ranked, s.entryFee, s.donationRate)

	positions := make(map[string]string, len(ranked))
	for _, r := range ranked {
		positions[r.EntryName] = r.Label()
	}
	compositeByName := make(map[string]scoring.ScoredEntry, len(scored))
	for _, sc := range scored {
		compositeByName[sc.EntryName] = sc
	}

	for i := range entries {
		entry := &entries[i]
		snapshot, err := json.Marshal(snapshots[entry.EntryName])
		if err != nil {
			s.logger.WithError(err).WithField("entry", entry.EntryName).Error("Failed to marshal golfer snapshot")
			snapshot = []byte("[]")
		}
		err = s.db.WithContext(ctx).
			Model(&models.Entry{}).
			Where("id = ?", entry.ID).
			Updates(map[string]interface{}{
				"calculated_score": compositeByName[entry.EntryName].Score,
				"entry_total":      displays[entry.EntryName],
				"entry_position":   positions[entry.EntryName],
				"payout":           dist.Payouts[entry.EntryName],
				"golfer_results":   snapshot,
			}).Error
		if err != nil {
			s.logger.WithError(err).WithField("entry", entry.EntryName).Error("Failed to persist final result")
		}
	}

	err = s.db.WithContext(ctx).
		Model(&models.Tournament{}).
		Where("id = ?", tournament.ID).
		Updates(map[string]interface{}{
			"status":    models.TournamentOfficial,
			"is_active": false,
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to mark tournament official: %w", err)
	}

	standings := s.standings(ranked, displays, dist.Payouts)
	s.sendSummary(ctx, &tournament, entries, standings)

	if s.cache != nil {
		if err := s.cache.Delete(ctx, LeaderboardCacheKey(tournament.ID.String()), TournamentCacheKey()); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate leaderboard cache")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"tournament":   tournament.Name,
		"entries":      len(entries),
		"total_pool":   dist.TotalPool,
		"donation":     dist.Donation,
		"payable_pool": dist.PayablePool,
	}).Info("Tournament finalized")

	return &CompletionSummary{
		Tournament:  tournament.Name,
		EntryCount:  len(entries),
		TotalPool:   dist.TotalPool,
		Donation:    dist.Donation,
		PayablePool: dist.PayablePool,
		Standings:   standings,
		Payouts:     dist.Payouts,
	}, nil
}

func (s *CompletionService) standings(ranked []scoring.RankedEntry, displays map[string]string, payouts map[string]int) []ResultLine {
	lines := make([]ResultLine, 0, len(ranked))
	for _, r := range ranked {
		lines = append(lines, ResultLine{
			Position:  r.Label(),
			EntryName: r.EntryName,
			Total:     displays[r.EntryName],
			Payout:    payouts[r.EntryName],
		})
		if len(lines) == s.summaryTopN {
			break
		}
	}
	return lines
}

func (s *CompletionService) sendSummary(ctx context.Context, tournament *models.Tournament, entries []models.Entry, standings []ResultLine) {
	seen := make(map[string]bool, len(entries))
	var emails []string
	for i := range entries {
		email := entries[i].Email
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		emails = append(emails, email)
	}
	sort.Strings(emails)

	if err := s.notifier.SendResultsSummary(ctx, emails, tournament, standings); err != nil {
		s.logger.WithError(err).Error("Failed to send results summary")
	}
}
