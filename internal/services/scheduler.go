package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Mrcarnj/MajorPools-sub000/pkg/utils"
)

// SchedulerService drives the synchronizer on a fixed interval. It is the
// only component that invokes Run on a timer, so at-most-one scheduled run
// is in flight at a time; the admin trigger shares the synchronizer's own
// serialization.
type SchedulerService struct {
	sync         *SyncService
	logger       *logrus.Logger
	cron         *cron.Cron
	syncInterval time.Duration
	syncTimeout  time.Duration

	mu        sync.Mutex
	isRunning bool
}

func NewSchedulerService(syncService *SyncService, logger *logrus.Logger, syncInterval, syncTimeout time.Duration) *SchedulerService {
	return &SchedulerService{
		sync:         syncService,
		logger:       logger,
		cron:         cron.New(),
		syncInterval: syncInterval,
		syncTimeout:  syncTimeout,
	}
}

// Start begins the scheduled sync cycle. When runInitial is set an immediate
// sync fires in the background so a fresh deploy does not wait a full tick.
func (s *SchedulerService) Start(runInitial bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	schedule := fmt.Sprintf("@every %s", s.syncInterval.String())
	_, err := s.cron.AddFunc(schedule, s.runSync)
	if err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	if runInitial {
		go s.runSync()
	}

	s.logger.WithField("interval", s.syncInterval.String()).Info("Sync scheduler started")
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Sync scheduler stopped")
}

func (s *SchedulerService) runSync() {
	ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
	defer cancel()

	err := s.sync.Run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, utils.ErrNoActiveTournament):
		// Off-season quiet state, not a failure.
		s.logger.Debug("No active tournament, sync skipped")
	case errors.Is(err, utils.ErrFeedUnavailable):
		// Transient by definition; the next tick retries.
		s.logger.WithError(err).Warn("Sync skipped, feed unavailable")
	case errors.Is(err, utils.ErrAmbiguousActiveTournament):
		s.logger.WithError(err).Error("Sync skipped, tournament state needs admin attention")
	default:
		s.logger.WithError(err).Error("Scheduled sync failed")
	}
}
