package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/seyedibu8791/signal-relay/internal/matrix"
)

type fakeSender struct {
	mu    sync.Mutex
	sends []sentMessage
	fail  bool
}

type sentMessage struct {
	roomId string
	text   string
}

func (f *fakeSender) SendRoomMessage(ctx context.Context, roomId string, text string) (bool, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sentMessage{roomId: roomId, text: text})
	if f.fail {
		return false, ""
	}
	return true, "$event"
}

func (f *fakeSender) sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage{}, f.sends...)
}

func runRelay(t *testing.T, sender *fakeSender, messages []*matrix.InboundMessage) *Stats {
	t.Helper()
	stats := NewStats("!source:example.org", "!target:example.org", time.Minute)
	inbound := make(chan *matrix.InboundMessage)
	relay := NewRelay(sender, "!target:example.org", inbound, stats)

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go relay.Run(context.Background(), wg)
	for _, msg := range messages {
		inbound <- msg
	}
	close(inbound)
	wg.Wait()
	return stats
}

func TestRelayForwardsQualifyingMessages(t *testing.T) {
	sender := &fakeSender{}
	stats := runRelay(t, sender, []*matrix.InboundMessage{
		{RoomID: "!source:example.org", Sender: "@signals:example.org", Text: "BTCUSDT Long Leverage 20x"},
		{RoomID: "!source:example.org", Sender: "@signals:example.org", Text: "no keyword in here"},
		{RoomID: "!source:example.org", Sender: "@signals:example.org", Text: "Leverage: Manually Cancelled BTCUSDT"},
	})

	sends := sender.sent()
	if len(sends) != 2 {
		t.Fatalf("got %v sends, want 2: %+v", len(sends), sends)
	}
	if sends[0].roomId != "!target:example.org" || sends[0].text != "BTCUSDT Long Leverage 20x" {
		t.Errorf("unexpected first send: %+v", sends[0])
	}
	if sends[1].text != "Leverage: /Close #BTCUSDT" {
		t.Errorf("unexpected rewritten send: %+v", sends[1])
	}
	if got := stats.Received.Load(); got != 3 {
		t.Errorf("Received = %v, want 3", got)
	}
	if got := stats.Forwarded.Load(); got != 2 {
		t.Errorf("Forwarded = %v, want 2", got)
	}
	if got := stats.Dropped.Load(); got != 1 {
		t.Errorf("Dropped = %v, want 1", got)
	}
}

func TestRelayDropsEverythingWithoutKeyword(t *testing.T) {
	sender := &fakeSender{}
	stats := runRelay(t, sender, []*matrix.InboundMessage{
		{Text: ""},
		{Text: "BTCUSDT short entry"},
		{Text: "leverage lowercase"},
		{Text: "Manually Cancelled BTCUSDT"},
	})

	if sends := sender.sent(); len(sends) != 0 {
		t.Fatalf("got %v sends, want 0: %+v", len(sends), sends)
	}
	if got := stats.Dropped.Load(); got != 4 {
		t.Errorf("Dropped = %v, want 4", got)
	}
}

func TestRelaySurvivesSendFailures(t *testing.T) {
	sender := &fakeSender{fail: true}
	stats := runRelay(t, sender, []*matrix.InboundMessage{
		{Text: "Leverage 10x one"},
		{Text: "Leverage 10x two"},
	})

	// one attempt per message, no retries
	if sends := sender.sent(); len(sends) != 2 {
		t.Fatalf("got %v send attempts, want 2: %+v", len(sends), sends)
	}
	if got := stats.Forwarded.Load(); got != 0 {
		t.Errorf("Forwarded = %v, want 0", got)
	}
	if got := stats.Received.Load(); got != 2 {
		t.Errorf("Received = %v, want 2", got)
	}
}
