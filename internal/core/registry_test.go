package core

import (
	"fmt"
	"sync"
	"testing"
)

func TestRegistryRegisterAndSnapshotOrder(t *testing.T) {
	reg := NewRegistry()

	ann := NewConn("c1", "plaza", "")
	ann.SetVisitor(&Visitor{ID: "v1", Name: "Ann"})
	ben := NewConn("c2", "plaza", "")
	ben.SetVisitor(&Visitor{ID: "v2", Name: "Ben"})
	ghost := NewConn("c3", "plaza", "")

	if !reg.Register("plaza", ann) {
		t.Fatalf("expected first registration to succeed")
	}
	if reg.Register("plaza", ann) {
		t.Fatalf("expected duplicate registration to be rejected")
	}
	reg.Register("plaza", ghost)
	reg.Register("plaza", ben)

	if got := reg.Count("plaza"); got != 3 {
		t.Fatalf("expected 3 occupants, got %d", got)
	}

	snapshot := reg.Snapshot("plaza")
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 visitors in snapshot, got %d", len(snapshot))
	}
	if snapshot[0].Name != "Ann" || snapshot[1].Name != "Ben" {
		t.Fatalf("expected registration order Ann, Ben; got %+v", snapshot)
	}
}

func TestRegistryAnonymousExcludedButCounted(t *testing.T) {
	reg := NewRegistry()
	conn := NewConn("c1", "plaza", "")
	reg.Register("plaza", conn)

	if got := reg.Count("plaza"); got != 1 {
		t.Fatalf("expected anonymous occupant to count, got %d", got)
	}
	if got := len(reg.Snapshot("plaza")); got != 0 {
		t.Fatalf("expected empty snapshot, got %d visitors", got)
	}
}

func TestRegistrySetVisitor(t *testing.T) {
	reg := NewRegistry()
	conn := NewConn("c1", "plaza", "")
	reg.Register("plaza", conn)

	if !reg.SetVisitor("plaza", "c1", &Visitor{ID: "v1", Name: "Ann"}) {
		t.Fatalf("expected SetVisitor to find registered connection")
	}
	if got := len(reg.Snapshot("plaza")); got != 1 {
		t.Fatalf("expected 1 visitor after SetVisitor, got %d", got)
	}

	if !reg.SetVisitor("plaza", "c1", nil) {
		t.Fatalf("expected SetVisitor(nil) to succeed")
	}
	if got := len(reg.Snapshot("plaza")); got != 0 {
		t.Fatalf("expected empty snapshot after clearing visitor, got %d", got)
	}

	if reg.SetVisitor("plaza", "missing", &Visitor{ID: "v2", Name: "Ben"}) {
		t.Fatalf("expected SetVisitor to fail for unknown connection")
	}
	if reg.SetVisitor("ghost", "c1", nil) {
		t.Fatalf("expected SetVisitor to fail for unknown node")
	}
}

func TestRegistryDeregisterDropsEmptyNode(t *testing.T) {
	reg := NewRegistry()
	conn := NewConn("c1", "plaza", "")
	reg.Register("plaza", conn)

	if !reg.Deregister("plaza", "c1") {
		t.Fatalf("expected deregistration to succeed")
	}
	if reg.Deregister("plaza", "c1") {
		t.Fatalf("expected second deregistration to fail")
	}
	if got := reg.Count("plaza"); got != 0 {
		t.Fatalf("expected empty node, got %d occupants", got)
	}
}

func TestRegistryBroadcastScopedToNode(t *testing.T) {
	reg := NewRegistry()
	inPlaza := NewConn("c1", "plaza", "")
	other := NewConn("c2", "garden", "")
	reg.Register("plaza", inPlaza)
	reg.Register("garden", other)

	reg.Broadcast("plaza", &Event{Kind: EventMessage, Message: SystemMessage("hello")})

	ev := mustEvent(t, inPlaza.Events, EventMessage)
	if ev.Message.Content != "hello" {
		t.Fatalf("unexpected message: %+v", ev.Message)
	}
	mustNoEvent(t, other.Events)
}

func TestRegistryBroadcastOthersSkipsSender(t *testing.T) {
	reg := NewRegistry()
	sender := NewConn("c1", "plaza", "")
	peer := NewConn("c2", "plaza", "")
	reg.Register("plaza", sender)
	reg.Register("plaza", peer)

	reg.BroadcastOthers("plaza", "c1", &Event{Kind: EventMessage, Message: SystemMessage("psst")})

	mustEvent(t, peer.Events, EventMessage)
	mustNoEvent(t, sender.Events)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			conn := NewConn(fmt.Sprintf("c%d", n), "plaza", "")
			reg.Register("plaza", conn)
			reg.SetVisitor("plaza", conn.ID, &Visitor{ID: conn.ID, Name: conn.ID})
			reg.Snapshot("plaza")
			reg.Broadcast("plaza", &Event{Kind: EventVisitors})
			reg.Deregister("plaza", conn.ID)
		}(i)
	}
	wg.Wait()

	if got := reg.Count("plaza"); got != 0 {
		t.Fatalf("expected empty node after concurrent churn, got %d", got)
	}
}
