package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Mrcarnj/MajorPools-sub000/internal/feed"
	"github.com/Mrcarnj/MajorPools-sub000/internal/models"
	"github.com/Mrcarnj/MajorPools-sub000/pkg/utils"
)

// ActiveTournament returns the single tournament flagged active. Zero rows is
// the quiet off-season case; more than one means the admin state is corrupt
// and nothing should guess which pool is live.
func ActiveTournament(ctx context.Context, db *gorm.DB) (*models.Tournament, error) {
	var tournaments []models.Tournament
	if err := db.WithContext(ctx).Where("is_active = ?", true).Find(&tournaments).Error; err != nil {
		return nil, fmt.Errorf("failed to query active tournament: %w", err)
	}

	switch len(tournaments) {
	case 0:
		return nil, utils.ErrNoActiveTournament
	case 1:
		return &tournaments[0], nil
	default:
		return nil, fmt.Errorf("%w: %d tournaments flagged active", utils.ErrAmbiguousActiveTournament, len(tournaments))
	}
}

// TournamentService manages the tournament roster itself: finding the event
// currently in play on the feed schedule and flipping the single-active flag.
type TournamentService struct {
	db       *gorm.DB
	provider feed.Provider
	cache    *CacheService
	logger   *logrus.Logger
	cacheTTL time.Duration
}

func NewTournamentService(db *gorm.DB, provider feed.Provider, cache *CacheService, logger *logrus.Logger) *TournamentService {
	return &TournamentService{
		db:       db,
		provider: provider,
		cache:    cache,
		logger:   logger,
		cacheTTL: time.Minute,
	}
}

// Current returns the active tournament header, cached briefly since the
// public site polls it far more often than the sync cycle changes it. The
// sync job and the admin actions invalidate the key whenever they touch the
// header.
func (s *TournamentService) Current(ctx context.Context) (*models.Tournament, error) {
	if s.cache != nil {
		var cached models.Tournament
		if err := s.cache.Get(ctx, TournamentCacheKey(), &cached); err == nil {
			return &cached, nil
		}
	}

	tournament, err := ActiveTournament(ctx, s.db)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, TournamentCacheKey(), tournament, s.cacheTTL); err != nil {
			s.logger.WithError(err).Debug("Failed to cache tournament header")
		}
	}
	return tournament, nil
}

// Activate finds the tournament in play on the feed schedule, upserts it,
// marks it active, and deactivates every other tournament so the
// single-active invariant holds after every call.
func (s *TournamentService) Activate(ctx context.Context, now time.Time) (*models.Tournament, error) {
	year := fmt.Sprintf("%d", now.Year())
	schedule, err := s.provider.GetSchedule(ctx, year)
	if err != nil {
		return nil, err
	}

	var current *feed.ScheduleEvent
	for i := range schedule.Schedule {
		event := &schedule.Schedule[i]
		if !event.Date.Start.Valid || !event.Date.End.Valid {
			continue
		}
		if !now.Before(event.Date.Start.Time) && !now.After(event.Date.End.Time) {
			current = event
			break
		}
	}
	if current == nil {
		return nil, utils.NewAppError(utils.ErrCodeNotFound, "no tournament in play on the schedule")
	}

	details, err := s.provider.GetTournament(ctx, current.TournID)
	if err != nil {
		return nil, err
	}

	tournament := models.Tournament{
		PGAID:    details.TournID,
		Name:     details.Name,
		Year:     now.Year(),
		IsActive: true,
	}
	if details.Date.Start.Valid {
		tournament.StartDate = details.Date.Start.Time
	}
	if details.Date.End.Valid {
		tournament.EndDate = details.Date.End.Time
	}
	if len(details.Courses) > 0 {
		tournament.CourseName = details.Courses[0].CourseName
	}
	if details.Purse.Valid {
		tournament.Purse = float64(details.Purse.Value)
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "pga_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "year", "start_date", "end_date", "is_active",
				"course_name", "purse", "updated_at",
			}),
		}).
		Create(&tournament).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert tournament: %w", err)
	}

	// Re-read so the deactivate below has the persisted row's ID even when
	// the upsert hit the conflict path.
	var saved models.Tournament
	if err := s.db.WithContext(ctx).Where("pga_id = ?", details.TournID).First(&saved).Error; err != nil {
		return nil, fmt.Errorf("failed to reload tournament: %w", err)
	}

	err = s.db.WithContext(ctx).
		Model(&models.Tournament{}).
		Where("id <> ?", saved.ID).
		Update("is_active", false).Error
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate other tournaments: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, TournamentCacheKey()); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate tournament cache")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"tournament": saved.Name,
		"year":       saved.Year,
	}).Info("Activated tournament")
	return &saved, nil
}
