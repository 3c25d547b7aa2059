package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// queueLoadWarning is the fill ratio above which the dispatch queue is
// reported at Warn level.
const queueLoadWarning = 0.8

// RestartCounter reports worker restarts, see Supervisor.Restarts.
type RestartCounter interface {
	Restarts() map[string]int
}

// HealthWorker samples the process (RSS, CPU, status), the dispatch
// queue depth and the worker restarts at a fixed interval and logs them.
type HealthWorker struct {
	log      *slog.Logger
	queue    *EventQueue
	restarts RestartCounter
	interval time.Duration
}

// NewHealthWorker accepts a nil restarts counter.
func NewHealthWorker(log *slog.Logger, queue *EventQueue, restarts RestartCounter, interval time.Duration) *HealthWorker {
	return &HealthWorker{log: log, queue: queue, restarts: restarts, interval: interval}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health sampling")
			return nil
		case <-ticker.C:
			w.sample(p)
		}
	}
}

func (w *HealthWorker) sample(p *process.Process) {
	rss, cpu, status, err := selfStats(p)
	if err != nil {
		w.log.Error("Failed to collect self stats", "error", err)
		return
	}
	length, capacity := w.queue.Len(), w.queue.Cap()
	attrs := []any{"rss_bytes", rss, "cpu_percent", cpu, "status", status,
		"queue_length", length, "queue_capacity", capacity}
	if w.restarts != nil {
		if restarts := w.restarts.Restarts(); len(restarts) > 0 {
			attrs = append(attrs, "restarts", restarts)
		}
	}
	if capacity > 0 && float64(length)/float64(capacity) >= queueLoadWarning {
		w.log.Warn("Notification queue nearly full", attrs...)
		return
	}
	w.log.Debug("Process health", attrs...)
}

func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
