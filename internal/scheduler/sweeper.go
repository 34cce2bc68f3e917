package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/service"
)

// Sweeper periodically transitions approved consents past their expiry to
// expired. Permission checks already fail closed on wall-clock expiry, so
// the sweep only has to catch up the stored state.
type Sweeper struct {
	consents *service.ConsentService
	interval time.Duration
	logger   *logrus.Logger
}

// NewSweeper creates a new Sweeper
func NewSweeper(consents *service.ConsentService, interval time.Duration, logger *logrus.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{consents: consents, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled, sweeping on every tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.WithField("interval", s.interval.String()).Info("Expiry sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.consents.ExpireSweep(ctx); err != nil {
				s.logger.WithError(err).Error("Expiry sweep failed")
			}
		}
	}
}
