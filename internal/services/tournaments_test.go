package services

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Mrcarnj/MajorPools-sub000/internal/feed"
	"github.com/Mrcarnj/MajorPools-sub000/internal/models"
	"github.com/Mrcarnj/MajorPools-sub000/pkg/utils"
)

func flexTime(t time.Time) feed.FlexTime {
	return feed.FlexTime{Time: t, Valid: true}
}

func scheduleWith(now time.Time, tournID string) *feed.Schedule {
	event := feed.ScheduleEvent{
		TournID: tournID,
		Name:    "Masters Tournament",
	}
	event.Date.Start = flexTime(now.Add(-24 * time.Hour))
	event.Date.End = flexTime(now.Add(72 * time.Hour))

	past := feed.ScheduleEvent{
		TournID: "001",
		Name:    "Earlier Event",
	}
	past.Date.Start = flexTime(now.Add(-30 * 24 * time.Hour))
	past.Date.End = flexTime(now.Add(-26 * 24 * time.Hour))

	return &feed.Schedule{
		Year:     now.Format("2006"),
		Schedule: []feed.ScheduleEvent{past, event},
	}
}

func feedTournament(tournID string) *feed.Tournament {
	ft := &feed.Tournament{
		TournID: tournID,
		Name:    "Masters Tournament",
		Status:  models.TournamentNotStarted,
	}
	ft.Date.Start = flexTime(time.Date(2024, 4, 11, 0, 0, 0, 0, time.UTC))
	ft.Date.End = flexTime(time.Date(2024, 4, 14, 0, 0, 0, 0, time.UTC))
	ft.Courses = []struct {
		CourseName string `json:"courseName"`
	}{{CourseName: "Augusta National"}}
	return ft
}

func newTestTournaments(db *gorm.DB, provider feed.Provider, cache *CacheService) *TournamentService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewTournamentService(db, provider, cache, logger)
}

func TestActivateMarksSingleTournamentActive(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, 4, 12, 12, 0, 0, 0, time.UTC)

	// A stale active tournament from last month.
	stale := &models.Tournament{PGAID: "001", Name: "Earlier Event", Year: 2024, IsActive: true}
	require.NoError(t, db.Create(stale).Error)

	provider := &stubProvider{
		schedule:   scheduleWith(now, "033"),
		tournament: feedTournament("033"),
	}
	svc := newTestTournaments(db, provider, nil)

	activated, err := svc.Activate(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "033", activated.PGAID)
	assert.Equal(t, "Augusta National", activated.CourseName)
	assert.True(t, activated.IsActive)

	// The invariant holds: exactly one active tournament.
	current, err := ActiveTournament(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, activated.ID, current.ID)

	var reloaded models.Tournament
	require.NoError(t, db.First(&reloaded, "id = ?", stale.ID).Error)
	assert.False(t, reloaded.IsActive)
}

func TestCurrentServesCachedHeader(t *testing.T) {
	db := newTestDB(t)
	cache := newTestCache(t)
	tournament := seedTournament(t, db, models.TournamentInProgress)
	svc := newTestTournaments(db, nil, cache)

	first, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tournament.ID, first.ID)

	// A row change behind the cache is invisible until the TTL or an
	// explicit invalidation.
	require.NoError(t, db.Model(&models.Tournament{}).
		Where("id = ?", tournament.ID).
		Update("name", "Renamed Event").Error)

	second, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Masters Tournament", second.Name)
}

func TestActivateInvalidatesCachedHeader(t *testing.T) {
	db := newTestDB(t)
	cache := newTestCache(t)
	now := time.Date(2024, 4, 12, 12, 0, 0, 0, time.UTC)

	stale := &models.Tournament{PGAID: "001", Name: "Earlier Event", Year: 2024, IsActive: true}
	require.NoError(t, db.Create(stale).Error)

	provider := &stubProvider{
		schedule:   scheduleWith(now, "033"),
		tournament: feedTournament("033"),
	}
	svc := newTestTournaments(db, provider, cache)

	// Prime the cache with the stale header.
	cached, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "001", cached.PGAID)

	_, err = svc.Activate(context.Background(), now)
	require.NoError(t, err)

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "033", current.PGAID)
}

func TestActivateNothingInPlay(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	provider := &stubProvider{
		schedule: &feed.Schedule{Year: "2024"},
	}
	svc := newTestTournaments(db, provider, nil)

	_, err := svc.Activate(context.Background(), now)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.ErrCodeNotFound, appErr.Code)
}
