package workers

import (
	"context"
	"log/slog"
	"time"

	"rental-chat/contract"
	"rental-chat/domain/notification"
	"rental-chat/infrastructure/storage"

	"github.com/samber/lo"
)

type RetryConfig struct {
	Interval    time.Duration
	Window      time.Duration
	Settle      time.Duration
	MaxAttempts int
}

// RetrySweeper re-sends channels of recent notifications that never
// succeeded. A notification younger than Settle may still have an attempt
// in flight and is left alone. Each re-send appends to the delivery log.
type RetrySweeper struct {
	log           *slog.Logger
	notifications storage.INotificationRepository
	deliveries    storage.IDeliveryRepository
	dispatcher    contract.Dispatcher
	config        RetryConfig
	now           func() time.Time
}

func NewRetrySweeper(log *slog.Logger, notifications storage.INotificationRepository,
	deliveries storage.IDeliveryRepository, dispatcher contract.Dispatcher, config RetryConfig) *RetrySweeper {
	return &RetrySweeper{
		log:           log,
		notifications: notifications,
		deliveries:    deliveries,
		dispatcher:    dispatcher,
		config:        config,
		now:           time.Now,
	}
}

func (w *RetrySweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping retry sweeper")
			return nil
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				w.log.Warn("Retry sweep failed", "error", err)
			}
		}
	}
}

// Sweep runs one pass and returns the first storage error met.
func (w *RetrySweeper) Sweep(ctx context.Context) error {
	now := w.now().UTC()
	candidates, err := w.notifications.ListCreatedBetween(now.Add(-w.config.Window), now.Add(-w.config.Settle))
	if err != nil {
		return err
	}
	for _, n := range candidates {
		if ctx.Err() != nil {
			return nil
		}
		attempts, err := w.deliveries.ByNotification(n.ID)
		if err != nil {
			return err
		}
		for _, channel := range w.retryable(n, attempts) {
			try := lastTry(attempts, channel) + 1
			result := w.dispatcher.Redeliver(ctx, n, channel, try)
			w.log.Info("Notification channel retried", "notification_id", n.ID, "recipient_id", n.RecipientID,
				"channel", channel, "try", try, "outcome", result.Outcome)
		}
	}
	return nil
}

// retryable lists the channels without a successful final attempt that
// still have tries left.
func (w *RetrySweeper) retryable(n notification.Notification, attempts []notification.DeliveryAttempt) []notification.Channel {
	final := notification.FinalAttempts(attempts)
	return lo.Filter(n.Channels, func(channel notification.Channel, _ int) bool {
		if a, ok := final[channel]; ok && a.Outcome == notification.Success {
			return false
		}
		return lastTry(attempts, channel) < w.config.MaxAttempts
	})
}

func lastTry(attempts []notification.DeliveryAttempt, channel notification.Channel) int {
	try := 0
	for _, a := range attempts {
		if a.Channel == channel && a.Try > try {
			try = a.Try
		}
	}
	return try
}
