package workers

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"rental-chat/contract"
	"rental-chat/errors"
)

const (
	defaultRestartInterval = 200 * time.Millisecond
	maxRestartDelay        = 30 * time.Second
)

// Supervisor keeps the background workers of the server alive. A worker
// that panics or fails is restarted after a delay that doubles with each
// consecutive crash. A worker returning nil is finished for good.
type Supervisor struct {
	mu              sync.Mutex
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	log             *slog.Logger
	workers         []contract.Worker
	restarts        map[string]int
	restartInterval time.Duration
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	if restartInterval <= 0 {
		restartInterval = defaultRestartInterval
	}
	return &Supervisor{log: log, restarts: make(map[string]int), restartInterval: restartInterval}
}

// Run blocks until every worker has stopped.
// Canceling the parent context or calling Stop cancels the workers only.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	workers := s.workers
	s.mu.Unlock()

	for _, worker := range workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, worker...)
	return s
}

// Start runs one worker under supervision. A crash never stops the others.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	name := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()
		crashes := 0
		for {
			startedAt := time.Now()
			err := runSafely(ctx, worker)
			switch {
			case err == nil:
				s.log.Info("Worker finished", "name", name)
				return
			case ctx.Err() != nil:
				s.log.Info("Worker stopped (context canceled)", "name", name)
				return
			}

			// a worker that stayed up long enough starts over from the base delay
			if time.Since(startedAt) >= maxRestartDelay {
				crashes = 0
			}
			crashes++
			delay := restartDelay(s.restartInterval, crashes)
			s.recordRestart(name)
			s.log.Warn("Worker crashed, restarting", "name", name, "error", err, "delay", delay)

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
	}()
}

// Restarts returns how many times each worker has been restarted.
func (s *Supervisor) Restarts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.restarts)
}

// Stop cancels every supervised worker. Run returns once they are all done.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Supervisor) recordRestart(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restarts[name]++
}

func runSafely(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return worker.Run(ctx)
}

func restartDelay(base time.Duration, crashes int) time.Duration {
	delay := base
	for i := 1; i < crashes && delay < maxRestartDelay; i++ {
		delay *= 2
	}
	return min(delay, maxRestartDelay)
}
