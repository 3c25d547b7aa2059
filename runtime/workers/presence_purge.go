package workers

import (
	"context"
	"log/slog"
	"time"

	"rental-chat/contract"
)

// PresencePurgeWorker removes typing indicators older than the TTL.
// Readers already ignore them; this only bounds memory.
type PresencePurgeWorker struct {
	log      *slog.Logger
	store    contract.PresenceStore
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewPresencePurgeWorker(log *slog.Logger, store contract.PresenceStore, ttl, interval time.Duration) *PresencePurgeWorker {
	return &PresencePurgeWorker{log: log, store: store, ttl: ttl, interval: interval, now: time.Now}
}

func (w *PresencePurgeWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping presence purge")
			return nil
		case <-ticker.C:
			w.purge(ctx)
		}
	}
}

func (w *PresencePurgeWorker) purge(ctx context.Context) {
	purged, err := w.store.Purge(ctx, w.now().UTC().Add(-w.ttl))
	if err != nil {
		w.log.Warn("Unable to purge typing indicators", "error", err)
		return
	}
	if purged > 0 {
		w.log.Debug("Typing indicators purged", "count", purged)
	}
}
