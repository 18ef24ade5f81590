package app

import (
	"sync/atomic"
	"time"
)

// Stats holds the process-wide relay counters shown on the status page.
// Prometheus counters cannot be read back cheaply, so these are tracked
// alongside them.
type Stats struct {
	SourceRoom        string
	TargetRoom        string
	KeepAliveInterval time.Duration
	StartTime         time.Time

	Received   atomic.Int64
	Forwarded  atomic.Int64
	Dropped    atomic.Int64
	Heartbeats atomic.Int64
}

func NewStats(sourceRoom, targetRoom string, keepAliveInterval time.Duration) *Stats {
	return &Stats{
		SourceRoom:        sourceRoom,
		TargetRoom:        targetRoom,
		KeepAliveInterval: keepAliveInterval,
		StartTime:         time.Now(),
	}
}

func (s *Stats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}
