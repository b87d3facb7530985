package search

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"crmm/internal/config"
)

type SearchBackgroundService struct {
	searchSyncService *SearchSyncService
	logger            *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

const (
	queueProcessingInterval = 1 * time.Second
	fullResyncInterval      = 1 * time.Hour
)

// StartWorkers should run on one instance only; others just queue ids.
func (s *SearchBackgroundService) StartWorkers() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("Starting search sync background workers",
		slog.Duration("queueInterval", queueProcessingInterval),
		slog.Duration("resyncInterval", fullResyncInterval))

	s.wg.Add(2)
	go s.queueWorker()
	go s.resyncWorker()
}

func (s *SearchBackgroundService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}

	s.wg.Wait()
}

// ExecuteQueueForTest drains the queue in a blocking way.
func (s *SearchBackgroundService) ExecuteQueueForTest() error {
	for {
		processed, err := s.searchSyncService.ProcessQueue(context.Background())
		if err != nil {
			return err
		}

		if processed == 0 {
			return nil
		}
	}
}

func (s *SearchBackgroundService) ExecuteResyncForTest() error {
	return s.searchSyncService.ResyncAll(context.Background())
}

func (s *SearchBackgroundService) queueWorker() {
	defer s.wg.Done()

	ticker := time.NewTicker(queueProcessingInterval)
	defer ticker.Stop()

	for {
		if config.IsShouldShutdown() {
			s.logger.Info("Search queue worker shutting down due to shutdown signal")
			return
		}

		select {
		case <-s.ctx.Done():
			s.logger.Info("Search queue worker shutting down")
			return

		case <-ticker.C:
			if _, err := s.searchSyncService.ProcessQueue(s.ctx); err != nil {
				s.logger.Error("Error during search queue processing", slog.String("error", err.Error()))
			}
		}
	}
}

// resyncWorker runs a full resync at startup and then every interval.
func (s *SearchBackgroundService) resyncWorker() {
	defer s.wg.Done()

	if err := s.searchSyncService.ResyncAll(s.ctx); err != nil {
		s.logger.Error("Error during initial search resync", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(fullResyncInterval)
	defer ticker.Stop()

	for {
		if config.IsShouldShutdown() {
			s.logger.Info("Search resync worker shutting down due to shutdown signal")
			return
		}

		select {
		case <-s.ctx.Done():
			s.logger.Info("Search resync worker shutting down")
			return

		case <-ticker.C:
			if err := s.searchSyncService.ResyncAll(s.ctx); err != nil {
				s.logger.Error("Error during search resync", slog.String("error", err.Error()))
			}
		}
	}
}
