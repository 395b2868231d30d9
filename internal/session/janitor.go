package session

import (
	"context"
	"log/slog"
	"time"
)

// Janitor sweeps expired session rows in the background. Resolve already
// rejects expired tokens, so the sweep is purely about reclaiming storage.
type Janitor struct {
	store    Store
	interval time.Duration
	log      *slog.Logger
	swept    func(n int64)
}

func NewJanitor(store Store, interval time.Duration, log *slog.Logger, swept func(n int64)) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}

	return &Janitor{
		store:    store,
		interval: interval,
		log:      log,
		swept:    swept,
	}
}

// Run blocks until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	n, err := j.store.DeleteExpired(cctx, time.Now().UTC())

	if err != nil {
		j.log.Error("session sweep failed", "err", err)
		return
	}

	if n > 0 {
		j.log.Info("expired sessions removed", "count", n)

		if j.swept != nil {
			j.swept(n)
		}
	}
}
