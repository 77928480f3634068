package http

import (
	"github.com/nodeworld/nodeworld-live/internal/core"
	"github.com/nodeworld/nodeworld-live/internal/proto"
)

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventMessage:
		msg := messageToProto(event.Message)
		return proto.Outbound{Event: proto.OutboundEventMessage, Data: &msg}
	case core.EventVisitors:
		visitors := make([]proto.Visitor, 0, len(event.Visitors))
		for _, v := range event.Visitors {
			visitors = append(visitors, proto.Visitor{ID: v.ID, Name: v.Name})
		}
		return proto.Outbound{Event: proto.OutboundEventVisitors, Data: visitors}
	case core.EventJoined:
		return proto.Outbound{Event: proto.OutboundEventJoined}
	default:
		return proto.Outbound{}
	}
}

func messageToProto(msg core.Message) proto.Message {
	return proto.Message{
		Type:    int(msg.Type),
		Name:    msg.Name,
		Content: msg.Content,
	}
}
