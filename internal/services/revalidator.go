package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/workhive/desk/session"
)

// Revalidator periodically re-fetches the profile while a session is
// authenticated, so a token revoked server-side is noticed without
// waiting for the next user action. Failures follow the same
// clear-and-go-anonymous path as startup revalidation.
type Revalidator struct {
	store    *session.Store
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	cron     *cron.Cron
}

func NewRevalidator(store *session.Store, interval, timeout time.Duration, logger *zap.Logger) *Revalidator {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Revalidator{
		store:    store,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Start schedules the periodic revalidation.
func (r *Revalidator) Start() error {
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(fmt.Sprintf("@every %s", r.interval), r.run); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

func (r *Revalidator) run() {
	if !r.store.Snapshot().IsAuthenticated() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.store.RefreshProfile(ctx); err != nil {
		r.logger.Info("periodic revalidation cleared session", zap.Error(err))
	}
}

// Stop halts the schedule, waiting for a running job to finish.
func (r *Revalidator) Stop(ctx context.Context) error {
	if r.cron == nil {
		return nil
	}
	select {
	case <-r.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
