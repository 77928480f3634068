package core

// EventKind is a notification the core emits to a connection.
type EventKind int

const (
	// EventMessage delivers a Message to the connection.
	EventMessage EventKind = iota
	// EventVisitors delivers the presence snapshot of the connection's node.
	EventVisitors
	// EventJoined acknowledges that the connection protocol has finished.
	EventJoined
)

// Event is sent to connections to describe what happened in the node.
type Event struct {
	Kind     EventKind
	Message  Message
	Visitors []Visitor
}
