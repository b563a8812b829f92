package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/veloportal/internal/store"
)

// Scheduler saves periodic snapshots on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
	src  *store.Store
	dst  Store
	log  *logrus.Logger
}

// NewScheduler creates an autosave scheduler.
func NewScheduler(src *store.Store, dst Store, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.New()
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		src:  src,
		dst:  dst,
		log:  log,
	}
}

// Schedule registers the autosave job. The expression uses standard cron
// syntax.
func (s *Scheduler) Schedule(cronExpression string) error {
	_, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := s.dst.Save(ctx, s.src.Export()); err != nil {
			s.log.WithError(err).Error("Autosave failed")
			return
		}
		s.log.Debug("Autosave completed")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule autosave: %w", err)
	}
	return nil
}

// Start begins running scheduled saves.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Snapshot autosave started")
}

// Stop stops the scheduler and waits for a running save to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Snapshot autosave stopped")
}
