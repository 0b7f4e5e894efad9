package repository

import "time"

type options struct {
	now                   func() time.Time
	metricsUpdateInterval time.Duration
	summaryErr            error
	historyErr            error
}

func defaultOptions() options {
	return options{
		now:                   time.Now,
		metricsUpdateInterval: 5 * time.Second,
	}
}

// Option configures a store.
type Option func(*options)

// WithClock sets the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithMetricsUpdateInterval sets how often the stored-creator gauge is refreshed.
// Zero or less disables the background updater.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(o *options) {
		o.metricsUpdateInterval = interval
	}
}

// WithSummaryFailure makes every summary write of a MemoryStore fail with err.
func WithSummaryFailure(err error) Option {
	return func(o *options) {
		o.summaryErr = err
	}
}

// WithHistoryFailure makes every history write of a MemoryStore fail with err.
func WithHistoryFailure(err error) Option {
	return func(o *options) {
		o.historyErr = err
	}
}
