package core

// MessageType discriminates the message variants on the wire.
type MessageType int

const (
	// MessageSystem is a server-generated notice (joins, greetings, departures).
	MessageSystem MessageType = iota
	// MessageChat is a chat line attributed to a visitor.
	MessageChat
	// MessageAction is an emote-style line attributed to a visitor.
	MessageAction
)

// Message is a single line delivered to node members. The node is implied
// by delivery context and never carried on the message itself.
type Message struct {
	Type    MessageType `json:"type"`
	Name    string      `json:"name,omitempty"`
	Content string      `json:"content"`
}

// SystemMessage builds a server notice.
func SystemMessage(content string) Message {
	return Message{Type: MessageSystem, Content: content}
}

// ChatMessage builds a chat line from a named visitor.
func ChatMessage(name, content string) Message {
	return Message{Type: MessageChat, Name: name, Content: content}
}

// ActionMessage builds an emote line from a named visitor.
func ActionMessage(name, content string) Message {
	return Message{Type: MessageAction, Name: name, Content: content}
}

// Envelope is the record consumed from the shared message queue: a node
// name and the message to fan out to that node's local connections.
type Envelope struct {
	Node    string  `json:"node"`
	Message Message `json:"message"`
}
