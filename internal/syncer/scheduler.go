package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/guilherme-santos/linearcalendar/internal"
)

const DefaultRefreshSchedule = "@every 15m"

// Scheduler refreshes the mirrored events periodically while connected.
type Scheduler struct {
	cron *cron.Cron
	ctrl *Controller
	// Timeout bounds a single refresh.
	Timeout time.Duration
	// OnError, when set, receives failed scheduled refreshes.
	OnError func(error)
}

func NewScheduler(ctrl *Controller, schedule string) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}

	s := &Scheduler{
		cron:    cron.New(),
		ctrl:    ctrl,
		Timeout: 2 * time.Minute,
	}
	if _, err := s.cron.AddFunc(schedule, s.refresh); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	logf(s.ctrl.output, nil, "Starting refresh scheduler...")
	s.cron.Start()
}

// Stop waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logf(s.ctrl.output, nil, "Refresh scheduler stopped")
}

// Next is the time of the next scheduled refresh.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) refresh() {
	if !s.ctrl.store.Connected() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	err := s.ctrl.Refresh(ctx)
	if err == nil || errors.Is(err, internal.ErrAuthRequired) {
		return
	}
	logf(s.ctrl.output, nil, "Scheduled refresh failed: %v", err)
	if s.OnError != nil {
		s.OnError(err)
	}
}
