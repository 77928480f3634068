package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeNodeName(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"/plaza", "plaza"},
		{"/plaza/", "plaza"},
		{"plaza", "plaza"},
		{"plaza/", "plaza"},
		{"/", ""},
	}
	for _, tc := range cases {
		if got := NormalizeNodeName(tc.raw); got != tc.want {
			t.Errorf("NormalizeNodeName(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestGateAdmitsKnownNode(t *testing.T) {
	directory := &stubDirectory{nodes: map[string]*Node{
		"plaza": {ID: "n1", Name: "Plaza"},
	}}
	gate := NewGate(directory, time.Second, testLogger())

	name, err := gate.Admit(context.Background(), "/plaza/")
	if err != nil {
		t.Fatalf("expected admission, got %v", err)
	}
	if name != "plaza" {
		t.Fatalf("expected normalized name plaza, got %q", name)
	}
}

func TestGateRejectsUnknownNode(t *testing.T) {
	directory := &stubDirectory{nodes: map[string]*Node{}}
	gate := NewGate(directory, time.Second, testLogger())

	if _, err := gate.Admit(context.Background(), "/ghost"); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestGateRejectsWhenDirectoryUnreachable(t *testing.T) {
	directory := &stubDirectory{err: errors.New("connection refused")}
	gate := NewGate(directory, time.Second, testLogger())

	if _, err := gate.Admit(context.Background(), "/plaza"); err == nil {
		t.Fatalf("expected admission failure when directory is unreachable")
	}
}
