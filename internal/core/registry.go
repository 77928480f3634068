package core

import "sync"

// Registry tracks which connections currently occupy which node. Node
// entries are created lazily on first registration and removed once the
// last connection leaves. Anonymous connections count as occupants but are
// excluded from presence snapshots.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]*nodeEntry
}

type nodeEntry struct {
	// conns preserves registration order for snapshot enumeration.
	conns []*Conn
	byID  map[string]*Conn
}

// NewRegistry constructs an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]*nodeEntry)}
}

// Register inserts a connection into a node's occupant set. Returns true
// if newly added.
func (r *Registry) Register(node string, conn *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.nodes[node]
	if !ok {
		entry = &nodeEntry{byID: make(map[string]*Conn)}
		r.nodes[node] = entry
	}
	if _, exists := entry.byID[conn.ID]; exists {
		return false
	}
	entry.byID[conn.ID] = conn
	entry.conns = append(entry.conns, conn)
	return true
}

// Deregister removes a connection from a node's occupant set. Returns true
// if the connection was present. Empty nodes are dropped from the registry.
func (r *Registry) Deregister(node, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.nodes[node]
	if !ok {
		return false
	}
	if _, exists := entry.byID[connID]; !exists {
		return false
	}
	delete(entry.byID, connID)
	for i, c := range entry.conns {
		if c.ID == connID {
			entry.conns = append(entry.conns[:i], entry.conns[i+1:]...)
			break
		}
	}
	if len(entry.conns) == 0 {
		delete(r.nodes, node)
	}
	return true
}

// SetVisitor replaces the visitor identity of a registered connection.
// Returns false if the connection is not registered under the node.
func (r *Registry) SetVisitor(node, connID string, v *Visitor) bool {
	r.mu.RLock()
	entry, ok := r.nodes[node]
	var conn *Conn
	if ok {
		conn = entry.byID[connID]
	}
	r.mu.RUnlock()

	if conn == nil {
		return false
	}
	conn.SetVisitor(v)
	return true
}

// Snapshot returns the authenticated occupants of a node in registration
// order. Anonymous occupants remain connected but do not appear.
func (r *Registry) Snapshot(node string) []Visitor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.nodes[node]
	if !ok {
		return []Visitor{}
	}
	visitors := make([]Visitor, 0, len(entry.conns))
	for _, conn := range entry.conns {
		if v := conn.Visitor(); v != nil {
			visitors = append(visitors, *v)
		}
	}
	return visitors
}

// Count returns the number of connections occupying a node, anonymous
// occupants included.
func (r *Registry) Count(node string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.nodes[node]
	if !ok {
		return 0
	}
	return len(entry.conns)
}

// Broadcast sends an event to every connection registered under a node.
func (r *Registry) Broadcast(node string, ev *Event) {
	for _, conn := range r.members(node) {
		conn.send(ev)
	}
}

// BroadcastOthers sends an event to every connection registered under a
// node except the one identified by exceptID.
func (r *Registry) BroadcastOthers(node, exceptID string, ev *Event) {
	for _, conn := range r.members(node) {
		if conn.ID == exceptID {
			continue
		}
		conn.send(ev)
	}
}

func (r *Registry) members(node string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.nodes[node]
	if !ok {
		return nil
	}
	members := make([]*Conn, len(entry.conns))
	copy(members, entry.conns)
	return members
}
