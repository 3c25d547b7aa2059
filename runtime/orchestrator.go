package runtime

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"rental-chat/contract"
	"rental-chat/infrastructure/storage"
	"rental-chat/runtime/workers"
)

//go:embed censored/*
var censoredFolder embed.FS

type Config struct {
	NumberOfDispatchers   int
	TypingTTL             time.Duration
	PresencePurgeInterval time.Duration
	HealthInterval        time.Duration
	Retry                 workers.RetryConfig
}

// Orchestrator owns the background side of the server: dispatch consumers,
// presence purge, retry sweeper and health sampling, all under one supervisor.
type Orchestrator struct {
	mu            sync.Mutex
	log           *slog.Logger
	supervisor    contract.ISupervisor
	queue         *workers.EventQueue
	dispatcher    contract.Dispatcher
	presence      contract.PresenceStore
	notifications storage.INotificationRepository
	deliveries    storage.IDeliveryRepository
	config        Config
	started       bool
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, queue *workers.EventQueue,
	dispatcher contract.Dispatcher, presence contract.PresenceStore,
	notifications storage.INotificationRepository, deliveries storage.IDeliveryRepository, config Config) *Orchestrator {
	return &Orchestrator{
		log:           log,
		supervisor:    supervisor,
		queue:         queue,
		dispatcher:    dispatcher,
		presence:      presence,
		notifications: notifications,
		deliveries:    deliveries,
		config:        config,
	}
}

// Workers lists everything Start hands to the supervisor. Optional workers
// are skipped when their interval is not set.
func (o *Orchestrator) Workers() []contract.Worker {
	var res []contract.Worker
	for i := 0; i < max(o.config.NumberOfDispatchers, 1); i++ {
		res = append(res, workers.NewDispatchWorker(o.queue, o.dispatcher, o.log))
	}
	if o.config.PresencePurgeInterval > 0 {
		res = append(res, workers.NewPresencePurgeWorker(o.log, o.presence, o.config.TypingTTL, o.config.PresencePurgeInterval))
	}
	if o.config.Retry.Interval > 0 && o.config.Retry.MaxAttempts > 1 {
		res = append(res, workers.NewRetrySweeper(o.log, o.notifications, o.deliveries, o.dispatcher, o.config.Retry))
	}
	if o.config.HealthInterval > 0 {
		restarts, _ := o.supervisor.(workers.RestartCounter)
		res = append(res, workers.NewHealthWorker(o.log, o.queue, restarts, o.config.HealthInterval))
	}
	return res
}

// Start registers the workers and blocks until the supervisor stops.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator already started")
	}
	o.started = true
	o.supervisor.Add(o.Workers()...)
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

// Stop cancels the supervised workers. Events still queued are not dispatched.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
