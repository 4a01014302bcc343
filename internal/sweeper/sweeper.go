// Package sweeper periodically deletes dead admin sessions.
//
// Logout and expiry only mark a session unusable; the row stays so a stolen
// token is still rejected. Once a session has been expired or revoked for
// longer than the retention window nothing can use it any more, and the
// sweeper removes it on a robfig/cron schedule.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Purger is the slice of the session store the sweeper needs.
type Purger interface {
	PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

type Config struct {
	// Schedule is a standard cron spec or descriptor such as "@every 1h".
	Schedule  string
	Retention time.Duration
	// Timeout bounds one sweep. Zero means one minute.
	Timeout time.Duration
	Now     func() time.Time
}

type Sweeper struct {
	store     Purger
	retention time.Duration
	timeout   time.Duration
	now       func() time.Time
	cron      *cron.Cron
	logger    *slog.Logger
}

// New registers the sweep job. Nothing runs until Start.
func New(store Purger, cfg Config, logger *slog.Logger) (*Sweeper, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}

	s := &Sweeper{
		store:     store,
		retention: cfg.Retention,
		timeout:   cfg.Timeout,
		now:       cfg.Now,
		cron:      cron.New(),
		logger:    logger,
	}

	if _, err := s.cron.AddFunc(cfg.Schedule, s.run); err != nil {
		return nil, fmt.Errorf("sweeper: invalid schedule %q: %w", cfg.Schedule, err)
	}
	return s, nil
}

// Sweep deletes sessions that died before now minus the retention window.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.store.PurgeSessions(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweeper: purging sessions: %w", err)
	}
	return n, nil
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.Sweep(ctx)
	if err != nil {
		s.logger.Error("session sweep failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("session sweep completed", slog.Int64("purged", n))
}

// Start runs the schedule in its own goroutine.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep, or until ctx ends.
func (s *Sweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
