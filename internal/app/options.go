package service

import (
	"time"

	"github.com/cnec/gradeengine/internal/adapters/repository"
	"github.com/cnec/gradeengine/internal/domain/badge"
	"github.com/cnec/gradeengine/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the grade store. The service closes it on Close.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithAggregateProvider sets the source of badge aggregates. Defaults to the store.
func WithAggregateProvider(p badge.AggregateProvider) Option {
	return func(s *Service) {
		if p != nil {
			s.aggregates = p
		}
	}
}

// WithWorkerCount sets the number of recompute workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the recompute queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many recompute request ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithBatchConcurrency bounds parallel gradings in RecomputeBatch.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// WithDefaultRegion sets the region used by featured lookups that name none.
func WithDefaultRegion(region string) Option {
	return func(s *Service) {
		s.defaultRegion = region
	}
}

// WithShutdownTimeout bounds how long Stop waits for queued requests.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
