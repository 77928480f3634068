package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// fakeQueue feeds payloads from a channel and fails with err once drained.
type fakeQueue struct {
	payloads chan []byte
	err      error
}

func newFakeQueue(payloads ...[]byte) *fakeQueue {
	q := &fakeQueue{payloads: make(chan []byte, len(payloads)+1)}
	for _, p := range payloads {
		q.payloads <- p
	}
	return q
}

func (q *fakeQueue) Pop(ctx context.Context) ([]byte, error) {
	select {
	case p := <-q.payloads:
		return p, nil
	default:
	}
	if q.err != nil {
		return nil, q.err
	}
	select {
	case p := <-q.payloads:
		return p, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func envelopePayload(t *testing.T, node string, msg Message) []byte {
	t.Helper()
	payload, err := json.Marshal(Envelope{Node: node, Message: msg})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return payload
}

func TestRelayFansOutToMatchingNodeOnly(t *testing.T) {
	reg := NewRegistry()
	inPlaza := NewConn("c1", "plaza", "")
	inGarden := NewConn("c2", "garden", "")
	reg.Register("plaza", inPlaza)
	reg.Register("garden", inGarden)

	queue := newFakeQueue(envelopePayload(t, "plaza", ChatMessage("Ann", "hi")))
	relay := NewRelay(queue, reg, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := relay.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected relay to stop on context, got %v", err)
	}

	ev := mustEvent(t, inPlaza.Events, EventMessage)
	if ev.Message.Type != MessageChat || ev.Message.Name != "Ann" || ev.Message.Content != "hi" {
		t.Fatalf("unexpected relayed message: %+v", ev.Message)
	}
	mustNoEvent(t, inGarden.Events)
}

func TestRelayPreservesQueueOrder(t *testing.T) {
	reg := NewRegistry()
	conn := NewConn("c1", "plaza", "")
	reg.Register("plaza", conn)

	queue := newFakeQueue(
		envelopePayload(t, "plaza", ChatMessage("Ann", "first")),
		envelopePayload(t, "plaza", ChatMessage("Ann", "second")),
	)
	relay := NewRelay(queue, reg, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = relay.Run(ctx)

	if ev := mustEvent(t, conn.Events, EventMessage); ev.Message.Content != "first" {
		t.Fatalf("expected first message first, got %+v", ev.Message)
	}
	if ev := mustEvent(t, conn.Events, EventMessage); ev.Message.Content != "second" {
		t.Fatalf("expected second message second, got %+v", ev.Message)
	}
}

func TestRelaySkipsMalformedEnvelope(t *testing.T) {
	reg := NewRegistry()
	conn := NewConn("c1", "plaza", "")
	reg.Register("plaza", conn)

	queue := newFakeQueue(
		[]byte("{not json"),
		[]byte(`{"message":{"type":1,"content":"orphan"}}`),
		envelopePayload(t, "plaza", ChatMessage("Ann", "after")),
	)
	relay := NewRelay(queue, reg, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = relay.Run(ctx)

	ev := mustEvent(t, conn.Events, EventMessage)
	if ev.Message.Content != "after" {
		t.Fatalf("expected malformed envelopes skipped, got %+v", ev.Message)
	}
	mustNoEvent(t, conn.Events)
}

func TestRelayQueueFailureIsFatal(t *testing.T) {
	reg := NewRegistry()
	queue := newFakeQueue()
	queue.err = errors.New("queue unavailable")
	relay := NewRelay(queue, reg, testLogger())

	err := relay.Run(context.Background())
	if err == nil || !errors.Is(err, queue.err) {
		t.Fatalf("expected fatal queue error, got %v", err)
	}
}

func TestRelayDeliversNothingToEmptyNode(t *testing.T) {
	reg := NewRegistry()
	queue := newFakeQueue(envelopePayload(t, "plaza", ChatMessage("Ann", "hi")))
	relay := NewRelay(queue, reg, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	// No local members of plaza; run must not panic or block forever.
	if err := relay.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected relay to stop on context, got %v", err)
	}
}
