package app

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/seyedibu8791/signal-relay/internal/metrics"
)

// StatusChecker is the platform client's connection health query.
type StatusChecker interface {
	CheckConnection(ctx context.Context) error
}

// KeepAlive emits a liveness signal on a fixed period so an
// idle-timeout-based host does not suspend the process. It holds no
// send primitive and produces no room traffic; a failed connection
// check never stops the loop.
type KeepAlive struct {
	interval     time.Duration
	checkTimeout time.Duration
	status       StatusChecker
	stats        *Stats
}

func NewKeepAlive(interval time.Duration, status StatusChecker, stats *Stats) *KeepAlive {
	return &KeepAlive{
		interval:     interval,
		checkTimeout: 10 * time.Second,
		status:       status,
		stats:        stats,
	}
}

func (k *KeepAlive) Run(ctx context.Context, waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			k.fire(ctx)
		}
	}
}

func (k *KeepAlive) fire(ctx context.Context) {
	k.stats.Heartbeats.Add(1)
	metrics.Heartbeats.Inc()
	log.Infof("Keep-alive ping")

	checkCtx, cancel := context.WithTimeout(ctx, k.checkTimeout)
	defer cancel()
	if err := k.status.CheckConnection(checkCtx); err != nil {
		metrics.HeartbeatFailures.Inc()
		metrics.ConnectedGauge.Set(0)
		log.Errorf("Keep-alive connection check failed: %v", err)
		return
	}
	metrics.ConnectedGauge.Set(1)
	log.Debug("Connection check passed")
}
