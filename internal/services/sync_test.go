package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Mrcarnj/MajorPools-sub000/internal/feed"
	"github.com/Mrcarnj/MajorPools-sub000/internal/models"
	"github.com/Mrcarnj/MajorPools-sub000/pkg/utils"
)

// stubProvider serves canned feed responses.
type stubProvider struct {
	schedule    *feed.Schedule
	tournament  *feed.Tournament
	leaderboard *feed.Leaderboard
	err         error
}

func (p *stubProvider) GetSchedule(ctx context.Context, year string) (*feed.Schedule, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.schedule, nil
}

func (p *stubProvider) GetTournament(ctx context.Context, tournID string) (*feed.Tournament, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.tournament, nil
}

func (p *stubProvider) GetLeaderboard(ctx context.Context, tournID, year string) (*feed.Leaderboard, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.leaderboard, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Tournament{}, &models.GolferScore{}, &models.Entry{}))
	return db
}

func seedTournament(t *testing.T, db *gorm.DB, status string) *models.Tournament {
	t.Helper()
	tournament := &models.Tournament{
		PGAID:    "033",
		Name:     "Masters Tournament",
		Year:     2024,
		IsActive: true,
		Status:   status,
	}
	require.NoError(t, db.Create(tournament).Error)
	return tournament
}

func seedEntry(t *testing.T, db *gorm.DB, tournamentID uuid.UUID, name, email string, golferIDs [8]string) *models.Entry {
	t.Helper()
	entry := &models.Entry{
		TournamentID: tournamentID,
		EntryName:    name,
		Email:        email,
		Tier1Golfer1: golferIDs[0],
		Tier1Golfer2: golferIDs[1],
		Tier2Golfer1: golferIDs[2],
		Tier2Golfer2: golferIDs[3],
		Tier3Golfer1: golferIDs[4],
		Tier3Golfer2: golferIDs[5],
		Tier4Golfer1: golferIDs[6],
		Tier5Golfer1: golferIDs[7],
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func feedRow(playerID, total, position string) feed.LeaderboardRow {
	return feed.LeaderboardRow{
		PlayerID:  playerID,
		FirstName: "Player",
		LastName:  playerID,
		Position:  position,
		Total:     total,
	}
}

// eightRows builds a full feed field g1..g8 with totals covering the spread.
func eightRows() []feed.LeaderboardRow {
	totals := []string{"-5", "-3", "E", "+1", "+2", "+4", "+6", "+8"}
	rows := make([]feed.LeaderboardRow, len(totals))
	for i, total := range totals {
		rows[i] = feedRow(fmt.Sprintf("g%d", i+1), total, fmt.Sprintf("%d", i+1))
	}
	return rows
}

func eightIDs() [8]string {
	return [8]string{"g1", "g2", "g3", "g4", "g5", "g6", "g7", "g8"}
}

func newTestSync(db *gorm.DB, provider feed.Provider, notifier Notifier) *SyncService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewSyncService(db, provider, notifier, nil, logger, 2)
}

func notStartedFeed(rows []feed.LeaderboardRow) *stubProvider {
	return &stubProvider{
		tournament: &feed.Tournament{
			TournID: "033",
			Name:    "Masters Tournament",
			Status:  models.TournamentNotStarted,
		},
		leaderboard: &feed.Leaderboard{
			TournID:         "033",
			LeaderboardRows: rows,
		},
	}
}

func TestSyncNoActiveTournament(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSync(db, notStartedFeed(eightRows()), NewMockNotifier())

	err := svc.Run(context.Background())
	assert.ErrorIs(t, err, utils.ErrNoActiveTournament)
}

func TestSyncAmbiguousActiveTournament(t *testing.T) {
	db := newTestDB(t)
	seedTournament(t, db, models.TournamentNotStarted)
	second := &models.Tournament{PGAID: "100", Name: "Second", Year: 2024, IsActive: true}
	require.NoError(t, db.Create(second).Error)

	svc := newTestSync(db, notStartedFeed(eightRows()), NewMockNotifier())
	err := svc.Run(context.Background())
	assert.ErrorIs(t, err, utils.ErrAmbiguousActiveTournament)
}

func TestSyncUpsertsGolfersAndScoresEntries(t *testing.T) {
	db := newTestDB(t)
	tournament := seedTournament(t, db, models.TournamentNotStarted)
	entry := seedEntry(t, db, tournament.ID, "John Smith", "john@example.com", eightIDs())

	svc := newTestSync(db, notStartedFeed(eightRows()), NewMockNotifier())
	require.NoError(t, svc.Run(context.Background()))

	var golfers []models.GolferScore
	require.NoError(t, db.Where("tournament_id = ?", tournament.ID).Find(&golfers).Error)
	assert.Len(t, golfers, 8)

	var updated models.Entry
	require.NoError(t, db.First(&updated, "id = ?", entry.ID).Error)
	// Best five of [-5,-3,0,1,2,4,6,8] sum to -5; the composite only
	// perturbs fractional digits below that.
	assert.Equal(t, "-5", updated.EntryTotal)
	assert.Equal(t, int64(-5), updated.CalculatedScore.Round(0).IntPart())

	status := svc.Status()
	require.NotNil(t, status.LastResult)
	assert.Equal(t, 8, status.LastResult.GolfersUpserted)
	assert.Equal(t, 1, status.LastResult.EntriesScored)
	assert.Equal(t, 0, status.LastResult.EntriesFailed)
}

func TestSyncIdempotent(t *testing.T) {
	db := newTestDB(t)
	tournament := seedTournament(t, db, models.TournamentNotStarted)
	entry := seedEntry(t, db, tournament.ID, "John Smith", "john@example.com", eightIDs())

	notifier := NewMockNotifier()
	svc := newTestSync(db, notStartedFeed(eightRows()), notifier)

	require.NoError(t, svc.Run(context.Background()))
	var first models.Entry
	require.NoError(t, db.First(&first, "id = ?", entry.ID).Error)

	require.NoError(t, svc.Run(context.Background()))
	var second models.Entry
	require.NoError(t, db.First(&second, "id = ?", entry.ID).Error)

	assert.True(t, first.CalculatedScore.Equal(second.CalculatedScore),
		"unchanged feed must not move scores: %s vs %s", first.CalculatedScore, second.CalculatedScore)
	assert.Equal(t, first.EntryTotal, second.EntryTotal)
	assert.Empty(t, notifier.WithdrawalNotices)
}

func TestSyncDetachesAndNotifiesOnce(t *testing.T) {
	db := newTestDB(t)
	tournament := seedTournament(t, db, models.TournamentNotStarted)

	// A golfer attached from a previous cycle who is gone from the feed.
	gone := &models.GolferScore{
		PlayerID:     "gone",
		TournamentID: &tournament.ID,
		FirstName:    "Gone",
		LastName:     "Golfer",
		Total:        "E",
		Position:     "-",
	}
	require.NoError(t, db.Create(gone).Error)

	ids := eightIDs()
	ids[7] = "gone"
	entry := seedEntry(t, db, tournament.ID, "John Smith", "john@example.com", ids)
	unaffected := seedEntry(t, db, tournament.ID, "Jane Doe", "jane@example.com", eightIDs())

	notifier := NewMockNotifier()
	svc := newTestSync(db, notStartedFeed(eightRows()), notifier)
	require.NoError(t, svc.Run(context.Background()))

	var detached models.GolferScore
	require.NoError(t, db.First(&detached, "player_id = ?", "gone").Error)
	assert.Nil(t, detached.TournamentID, "absent golfer must be detached, not deleted")

	require.Len(t, notifier.WithdrawalNotices, 1)
	notice := notifier.WithdrawalNotices[0]
	assert.Equal(t, entry.Email, notice.Email)
	assert.Equal(t, entry.EntryName, notice.EntryName)
	assert.Equal(t, []string{"Gone Golfer"}, notice.Golfers)

	// The second cycle sees no newly detached golfer: no duplicate notice.
	require.NoError(t, svc.Run(context.Background()))
	assert.Len(t, notifier.WithdrawalNotices, 1)

	// The unaffected entry still got rescored both cycles.
	var other models.Entry
	require.NoError(t, db.First(&other, "id = ?", unaffected.ID).Error)
	assert.Equal(t, "-5", other.EntryTotal)
}

func TestSyncSuppressesNoticesInProgress(t *testing.T) {
	db := newTestDB(t)
	tournament := seedTournament(t, db, models.TournamentInProgress)

	gone := &models.GolferScore{
		PlayerID:     "gone",
		TournamentID: &tournament.ID,
		FirstName:    "Gone",
		LastName:     "Golfer",
		Total:        "E",
		Position:     "-",
	}
	require.NoError(t, db.Create(gone).Error)

	ids := eightIDs()
	ids[0] = "gone"
	seedEntry(t, db, tournament.ID, "John Smith", "john@example.com", ids)

	provider := notStartedFeed(eightRows())
	provider.tournament.Status = models.TournamentInProgress

	notifier := NewMockNotifier()
	svc := newTestSync(db, provider, notifier)
	require.NoError(t, svc.Run(context.Background()))

	var detached models.GolferScore
	require.NoError(t, db.First(&detached, "player_id = ?", "gone").Error)
	assert.Nil(t, detached.TournamentID)
	assert.Empty(t, notifier.WithdrawalNotices, "mid-round withdrawals are scored silently")
}

func TestSyncFeedUnavailableAborts(t *testing.T) {
	db := newTestDB(t)
	tournament := seedTournament(t, db, models.TournamentNotStarted)
	entry := seedEntry(t, db, tournament.ID, "John Smith", "john@example.com", eightIDs())

	provider := &stubProvider{err: fmt.Errorf("%w: connection refused", utils.ErrFeedUnavailable)}
	svc := newTestSync(db, provider, NewMockNotifier())

	err := svc.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrFeedUnavailable))

	// Nothing was touched.
	var unchanged models.Entry
	require.NoError(t, db.First(&unchanged, "id = ?", entry.ID).Error)
	assert.Empty(t, unchanged.EntryTotal)

	status := svc.Status()
	assert.NotEmpty(t, status.LastError)
	assert.False(t, status.Running)
}

func TestSyncEmptyLeaderboardAborts(t *testing.T) {
	db := newTestDB(t)
	tournament := seedTournament(t, db, models.TournamentInProgress)

	attached := &models.GolferScore{
		PlayerID:     "g1",
		TournamentID: &tournament.ID,
		Total:        "-4",
		Position:     "1",
	}
	require.NoError(t, db.Create(attached).Error)

	provider := notStartedFeed(nil)
	svc := newTestSync(db, provider, NewMockNotifier())

	err := svc.Run(context.Background())
	assert.ErrorIs(t, err, utils.ErrFeedUnavailable)

	// The attached field must not be detached on a broken response.
	var still models.GolferScore
	require.NoError(t, db.First(&still, "player_id = ?", "g1").Error)
	assert.NotNil(t, still.TournamentID)
}

func TestSyncStatusSurvivesRestart(t *testing.T) {
	db := newTestDB(t)
	cache := newTestCache(t)
	tournament := seedTournament(t, db, models.TournamentNotStarted)
	seedEntry(t, db, tournament.ID, "John Smith", "john@example.com", eightIDs())

	provider := notStartedFeed(eightRows())
	notifier := NewMockNotifier()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	first := NewSyncService(db, provider, notifier, cache, logger, 2)
	require.NoError(t, first.Run(context.Background()))

	// A freshly started process has nothing in memory and reads the status
	// the previous process persisted.
	second := NewSyncService(db, provider, notifier, cache, logger, 2)
	status := second.Status()
	require.NotNil(t, status.LastRun)
	assert.False(t, status.Running)
	require.NotNil(t, status.LastResult)
	assert.Equal(t, tournament.Name, status.LastResult.Tournament)
	assert.Equal(t, 8, status.LastResult.GolfersUpserted)
}
