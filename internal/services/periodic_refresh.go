package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// PeriodicRefresh re-runs the full corridor rebuild on a fixed interval so
// published geometry tracks upstream feed changes.
type PeriodicRefresh struct {
	corridors *CorridorService
	interval  time.Duration
	log       zerolog.Logger

	stopChan chan struct{}
	running  bool
}

// NewPeriodicRefresh creates the refresh loop. It does not start it.
func NewPeriodicRefresh(corridors *CorridorService, interval time.Duration, log zerolog.Logger) *PeriodicRefresh {
	return &PeriodicRefresh{
		corridors: corridors,
		interval:  interval,
		log:       log,
		stopChan:  make(chan struct{}),
	}
}

// Start launches the background loop, rebuilding immediately and then on
// every tick. Safe to call once; subsequent calls are no-ops.
func (p *PeriodicRefresh) Start(ctx context.Context) {
	if p.running || p.interval <= 0 {
		return
	}
	p.running = true

	p.log.Info().Dur("interval", p.interval).Msg("starting periodic corridor refresh")
	go p.loop(ctx)
}

// Stop signals the loop to exit.
func (p *PeriodicRefresh) Stop() {
	if !p.running {
		return
	}
	p.running = false
	close(p.stopChan)
}

func (p *PeriodicRefresh) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.rebuild(ctx)

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("periodic refresh stopping: context cancelled")
			return
		case <-p.stopChan:
			p.log.Info().Msg("periodic refresh stopped")
			return
		case <-ticker.C:
			p.rebuild(ctx)
		}
	}
}

func (p *PeriodicRefresh) rebuild(ctx context.Context) {
	if err := p.corridors.RebuildAll(ctx); err != nil {
		p.log.Error().Err(err).Msg("periodic rebuild finished with failures")
	}
}
