package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// stubDirectory resolves only the names it was seeded with.
type stubDirectory struct {
	nodes map[string]*Node
	calls int
	err   error
}

func (d *stubDirectory) Resolve(_ context.Context, name string) (*Node, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	node, ok := d.nodes[name]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return node, nil
}

// stubVerifier accepts only the tokens it was seeded with.
type stubVerifier struct {
	visitors map[string]*Visitor
}

func (v *stubVerifier) Verify(_ context.Context, token string) (*Visitor, error) {
	visitor, ok := v.visitors[token]
	if !ok {
		return nil, ErrInvalidCredential
	}
	return visitor, nil
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("expected no event, got kind %v", ev.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func drainEvents(ch <-chan *Event) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
