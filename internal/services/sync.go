package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Mrcarnj/MajorPools-sub000/internal/feed"
	"github.com/Mrcarnj/MajorPools-sub000/internal/models"
	"github.com/Mrcarnj/MajorPools-sub000/internal/scoring"
	"github.com/Mrcarnj/MajorPools-sub000/pkg/utils"
)

// SyncService is the periodic reconciliation job: it pulls the external
// leaderboard, upserts golfer state, detaches golfers who left the field,
// notifies affected entries, and recomputes every entry's score. Each step's
// writes are idempotent per row, so an aborted run leaves no partial
// corruption and the next tick repairs everything.
type SyncService struct {
	db       *gorm.DB
	provider feed.Provider
	notifier Notifier
	cache    *CacheService
	logger   *logrus.Logger
	workers  int

	runMu sync.Mutex

	statusMu sync.Mutex
	status   SyncStatus
}

// SyncResult summarizes one completed run.
type SyncResult struct {
	Tournament        string `json:"tournament"`
	GolfersUpserted   int    `json:"golfers_upserted"`
	GolfersDetached   int    `json:"golfers_detached"`
	EntriesScored     int    `json:"entries_scored"`
	EntriesFailed     int    `json:"entries_failed"`
	NotificationsSent int    `json:"notifications_sent"`
}

// SyncStatus reports the scheduler-visible state of the job.
type SyncStatus struct {
	Running    bool        `json:"running"`
	LastRun    *time.Time  `json:"last_run,omitempty"`
	LastError  string      `json:"last_error,omitempty"`
	LastResult *SyncResult `json:"last_result,omitempty"`
}

func NewSyncService(db *gorm.DB, provider feed.Provider, notifier Notifier, cache *CacheService, logger *logrus.Logger, workers int) *SyncService {
	if workers < 1 {
		workers = 1
	}
	return &SyncService{
		db:       db,
		provider: provider,
		notifier: notifier,
		cache:    cache,
		logger:   logger,
		workers:  workers,
	}
}

// Status returns a snapshot of the last run. A freshly started process that
// has not synced yet falls back to the status the previous process persisted
// to the cache.
func (s *SyncService) Status() SyncStatus {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	if s.status.LastRun == nil && !s.status.Running && s.cache != nil {
		var cached SyncStatus
		if err := s.cache.GetSimple(SyncStatusCacheKey(), &cached); err == nil {
			cached.Running = false
			return cached
		}
	}
	return s.status
}

// Run executes one full synchronization cycle. Concurrent callers are
// serialized; the scheduler and the admin trigger may both invoke it.
func (s *SyncService) Run(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.setRunning(true)
	result, err := s.run(ctx)
	s.finish(result, err)

	return err
}

func (s *SyncService) run(ctx context.Context) (*SyncResult, error) {
	tournament, err := ActiveTournament(ctx, s.db)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithField("tournament", tournament.Name)
	log.Info("Starting tournament sync")

	feedTournament, err := s.provider.GetTournament(ctx, tournament.PGAID)
	if err != nil {
		return nil, err
	}
	leaderboard, err := s.provider.GetLeaderboard(ctx, tournament.PGAID, strconv.Itoa(tournament.Year))
	if err != nil {
		return nil, err
	}
	if len(leaderboard.LeaderboardRows) == 0 {
		// An empty field mid-tournament means the feed is broken, not that
		// everyone withdrew. Abort rather than detach the whole field.
		return nil, fmt.Errorf("%w: leaderboard returned no players", utils.ErrFeedUnavailable)
	}

	if err := s.updateHeader(ctx, tournament, feedTournament, leaderboard); err != nil {
		return nil, err
	}

	result := &SyncResult{Tournament: tournament.Name}

	upserted, err := s.reconcileGolfers(ctx, tournament, leaderboard)
	if err != nil {
		return result, err
	}
	result.GolfersUpserted = upserted

	detached, notified, err := s.detectWithdrawals(ctx, tournament, leaderboard)
	if err != nil {
		return result, err
	}
	result.GolfersDetached = detached
	result.NotificationsSent = notified

	scored, failed, err := s.recomputeEntries(ctx, tournament)
	if err != nil {
		return result, err
	}
	result.EntriesScored = scored
	result.EntriesFailed = failed

	if s.cache != nil {
		if err := s.cache.Delete(ctx, LeaderboardCacheKey(tournament.ID.String()), TournamentCacheKey()); err != nil {
			log.WithError(err).Warn("Failed to invalidate leaderboard cache")
		}
	}

	log.WithFields(logrus.Fields{
		"golfers_upserted": result.GolfersUpserted,
		"golfers_detached": result.GolfersDetached,
		"entries_scored":   result.EntriesScored,
		"entries_failed":   result.EntriesFailed,
		"notifications":    result.NotificationsSent,
	}).Info("Tournament sync complete")

	return result, nil
}

// updateHeader writes tournament status, current round, and cut score in a
// single update.
func (s *SyncService) updateHeader(ctx context.Context, tournament *models.Tournament, ft *feed.Tournament, lb *feed.Leaderboard) error {
	updates := map[string]interface{}{
		"status":    ft.Status,
		"cut_score": lb.CutScore(),
	}
	if ft.CurrentRound.Valid {
		updates["current_round"] = ft.CurrentRound.Value
	}

	err := s.db.WithContext(ctx).
		Model(&models.Tournament{}).
		Where("id = ?", tournament.ID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update tournament header: %w", err)
	}

	tournament.Status = ft.Status
	if ft.CurrentRound.Valid {
		tournament.CurrentRound = ft.CurrentRound.Value
	}
	tournament.CutScore = lb.CutScore()
	return nil
}

// reconcileGolfers batch-upserts every leaderboard row keyed on player_id.
func (s *SyncService) reconcileGolfers(ctx context.Context, tournament *models.Tournament, lb *feed.Leaderboard) (int, error) {
	rows := make([]models.GolferScore, 0, len(lb.LeaderboardRows))
	for _, row := range lb.LeaderboardRows {
		tid := tournament.ID
		rows = append(rows, models.GolferScore{
			PlayerID:          row.PlayerID,
			TournamentID:      &tid,
			FirstName:         row.FirstName,
			LastName:          row.LastName,
			IsAmateur:         row.IsAmateur,
			Status:            row.Status,
			Position:          row.Position,
			Total:             row.Total,
			CurrentRoundScore: row.CurrentRoundScore,
			Thru:              row.Thru,
			CurrentHole:       row.CurrentHole.Ptr(),
			StartingHole:      row.StartingHole.Ptr(),
			RoundComplete:     row.RoundComplete,
			CurrentRound:      row.CurrentRound.Ptr(),
			TeeTime:           row.TeeTime,
		})
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "player_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"tournament_id", "first_name", "last_name", "is_amateur",
				"status", "position", "total", "current_round_score", "thru",
				"current_hole", "starting_hole", "round_complete",
				"current_round", "tee_time", "updated_at",
			}),
		}).
		CreateInBatches(rows, 100).Error
	if err != nil {
		return 0, fmt.Errorf("failed to upsert golfer scores: %w", err)
	}
	return len(rows), nil
}

// detectWithdrawals detaches golfers attached to the tournament but absent
// from the feed, then notifies affected entries while the tournament has not
// started. Notification happens in the same cycle as the detach, so an
// unchanged feed on the next run produces no duplicates.
func (s *SyncService) detectWithdrawals(ctx context.Context, tournament *models.Tournament, lb *feed.Leaderboard) (detached, notified int, err error) {
	var existing []models.GolferScore
	err = s.db.WithContext(ctx).
		Where("tournament_id = ?", tournament.ID).
		Find(&existing).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load attached golfers: %w", err)
	}

	present := make(map[string]bool, len(lb.LeaderboardRows))
	for _, row := range lb.LeaderboardRows {
		present[row.PlayerID] = true
	}

	withdrawn := make(map[string]models.GolferScore)
	for _, golfer := range existing {
		if !present[golfer.PlayerID] {
			withdrawn[golfer.PlayerID] = golfer
		}
	}
	if len(withdrawn) == 0 {
		return 0, 0, nil
	}

	ids := make([]string, 0, len(withdrawn))
	for id := range withdrawn {
		ids = append(ids, id)
	}
	err = s.db.WithContext(ctx).
		Model(&models.GolferScore{}).
		Where("player_id IN ?", ids).
		Update("tournament_id", nil).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to detach withdrawn golfers: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tournament": tournament.Name,
		"golfers":    len(withdrawn),
	}).Info("Detached golfers absent from feed")

	if tournament.Started() {
		// Mid-round withdrawals are scored via the eligibility sentinel but
		// not announced.
		return len(withdrawn), 0, nil
	}

	notified = s.notifyWithdrawals(ctx, tournament, withdrawn)
	return len(withdrawn), notified, nil
}

// notifyWithdrawals sends one email per affected entry, grouping all of that
// entry's withdrawn golfers together.
func (s *SyncService) notifyWithdrawals(ctx context.Context, tournament *models.Tournament, withdrawn map[string]models.GolferScore) int {
	var entries []models.Entry
	err := s.db.WithContext(ctx).
		Where("tournament_id = ?", tournament.ID).
		Find(&entries).Error
	if err != nil {
		s.logger.WithError(err).Error("Failed to load entries for withdrawal notices")
		return 0
	}

	sent := 0
	for i := range entries {
		entry := &entries[i]
		var names []string
		for _, id := range entry.GolferSlots() {
			if golfer, ok := withdrawn[id]; ok {
				names = append(names, golfer.FullName())
			}
		}
		if len(names) == 0 {
			continue
		}
		if err := s.notifier.SendWithdrawalNotice(ctx, entry.Email, entry.EntryName, tournament, names); err != nil {
			s.logger.WithError(err).WithField("entry", entry.EntryName).Error("Failed to send withdrawal notice")
			continue
		}
		sent++
	}
	return sent
}

// recomputeEntries rescores every entry against the freshest golfer state.
// All entries are recomputed each cycle, not just ones touched by this
// cycle's withdrawals, because any golfer's score change shifts every
// dependent entry's tiebreak composite. Failures are per-row: a bad entry is
// logged and skipped so one row cannot blank out the whole cycle.
func (s *SyncService) recomputeEntries(ctx context.Context, tournament *models.Tournament) (scored, failed int, err error) {
	var entries []models.Entry
	err = s.db.WithContext(ctx).
		Where("tournament_id = ?", tournament.ID).
		Find(&entries).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load entries: %w", err)
	}
	if len(entries) == 0 {
		return 0, 0, nil
	}

	scoresByPlayer, err := s.golferScoreMap(ctx, tournament)
	if err != nil {
		return 0, 0, err
	}

	jobs := make(chan *models.Entry)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				if err := s.scoreEntry(ctx, entry, scoresByPlayer); err != nil {
					s.logger.WithError(err).WithField("entry", entry.EntryName).Error("Failed to rescore entry")
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}
				mu.Lock()
				scored++
				mu.Unlock()
			}
		}()
	}

	for i := range entries {
		jobs <- &entries[i]
	}
	close(jobs)
	wg.Wait()

	return scored, failed, nil
}

func (s *SyncService) golferScoreMap(ctx context.Context, tournament *models.Tournament) (map[string]models.GolferScore, error) {
	var golfers []models.GolferScore
	err := s.db.WithContext(ctx).
		Where("tournament_id = ?", tournament.ID).
		Find(&golfers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load golfer scores: %w", err)
	}

	byPlayer := make(map[string]models.GolferScore, len(golfers))
	for _, g := range golfers {
		byPlayer[g.PlayerID] = g
	}
	return byPlayer, nil
}

// scoreEntry resolves the entry's slots against stored golfer state and
// persists the composite and display scores. Slots that no longer resolve
// degrade to the eligibility sentinel inside the scorer.
func (s *SyncService) scoreEntry(ctx context.Context, entry *models.Entry, scoresByPlayer map[string]models.GolferScore) error {
	var results []scoring.GolferResult
	for _, id := range entry.GolferSlots() {
		golfer, ok := scoresByPlayer[id]
		if !ok {
			continue
		}
		results = append(results, scoring.GolferResult{
			PlayerID: golfer.PlayerID,
			Total:    golfer.Total,
			Position: golfer.Position,
		})
	}

	composite := scoring.Composite(results)
	display, eligible := scoring.Display(results)

	return s.db.WithContext(ctx).
		Model(&models.Entry{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"calculated_score": composite,
			"entry_total":      scoring.FormatDisplay(display, eligible),
		}).Error
}

func (s *SyncService) setRunning(running bool) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.Running = running
}

func (s *SyncService) finish(result *SyncResult, err error) {
	now := time.Now().UTC()

	s.statusMu.Lock()
	s.status.Running = false
	s.status.LastRun = &now
	if err != nil && !errors.Is(err, utils.ErrNoActiveTournament) {
		s.status.LastError = err.Error()
	} else {
		s.status.LastError = ""
		if result != nil {
			s.status.LastResult = result
		}
	}
	s.statusMu.Unlock()

	if s.cache != nil {
		if cacheErr := s.cache.SetWithRetry(context.Background(), SyncStatusCacheKey(), s.Status(), time.Hour, 3); cacheErr != nil {
			s.logger.WithError(cacheErr).Debug("Failed to cache sync status")
		}
	}
}
