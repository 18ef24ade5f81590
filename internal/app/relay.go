package app

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/seyedibu8791/signal-relay/internal/matrix"
	"github.com/seyedibu8791/signal-relay/internal/metrics"
	"github.com/seyedibu8791/signal-relay/internal/textprocessor"
)

// Sender is the one-shot send primitive of the platform client.
type Sender interface {
	SendRoomMessage(ctx context.Context, roomId string, text string) (bool, string)
}

// Relay consumes inbound messages from the source room, applies the
// filter/transform and performs at most one send per qualifying
// message. Messages are handled one at a time in delivery order.
type Relay struct {
	targetRoom string
	sender     Sender
	inbound    <-chan *matrix.InboundMessage
	stats      *Stats
}

func NewRelay(
	sender Sender, targetRoom string,
	inbound <-chan *matrix.InboundMessage, stats *Stats,
) *Relay {
	return &Relay{
		targetRoom: targetRoom,
		sender:     sender,
		inbound:    inbound,
		stats:      stats,
	}
}

func (r *Relay) Run(ctx context.Context, waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-r.inbound:
			if !ok {
				return
			}
			r.handle(ctx, msg)
		}
	}
}

func (r *Relay) handle(ctx context.Context, msg *matrix.InboundMessage) {
	r.stats.Received.Add(1)
	metrics.MessagesReceived.Inc()

	decision := textprocessor.ProcessMessage(msg.Text)
	if !decision.Forward {
		r.stats.Dropped.Add(1)
		metrics.MessagesDropped.Inc()
		log.Infof("Skipped message from %v (no %q found)", msg.Sender, textprocessor.ForwardKeyword)
		return
	}
	if decision.Rewritten(msg.Text) {
		metrics.MessagesRewritten.Inc()
		log.Infof("Rewrote cancellation message: %v", truncate(decision.Text, 50))
	}

	// single attempt, no retries
	ok, eventId := r.sender.SendRoomMessage(ctx, r.targetRoom, decision.Text)
	if !ok {
		metrics.SendFailures.Inc()
		log.Errorf("Error forwarding message from %v", msg.Sender)
		return
	}
	r.stats.Forwarded.Add(1)
	metrics.MessagesForwarded.Inc()
	log.Infof("Forwarded message %v: %v", eventId, truncate(decision.Text, 50))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
