package proto

// Inbound is the envelope for events coming from the client. The node
// protocol's client events carry no payload.
type Inbound struct {
	Type string `json:"type"`
}

const (
	InboundTypeLogin  = "login"
	InboundTypeLogout = "logout"

	OutboundEventMessage  = "message"
	OutboundEventVisitors = "visitors"
	OutboundEventJoined   = "joined"
)

// Outbound is the envelope for events sent to the client.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Message is a system, chat or action line on the wire.
type Message struct {
	Type    int    `json:"type"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
}

// Visitor is an authenticated occupant on the wire.
type Visitor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
