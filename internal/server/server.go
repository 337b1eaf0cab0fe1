package server

import (
	"github.com/google/uuid"

	"github.com/craftwatch/craftwatch/internal/bot"
)

// Envelope is the outgoing reply frame shared by both transports.
type Envelope struct {
	// ID is a fresh identifier for this delivery.
	ID string `json:"id"`

	// ReplyTo echoes the incoming message id, when the adapter sent one.
	ReplyTo string `json:"reply_to,omitempty"`

	// GroupID names the chat group the reply belongs in.
	GroupID string `json:"group_id"`

	Segments []bot.Segment `json:"segments"`
}

// newEnvelope wraps a bot reply for delivery.
func newEnvelope(msg *bot.Message, reply *bot.Reply) Envelope {
	return Envelope{
		ID:       uuid.NewString(),
		ReplyTo:  msg.ID,
		GroupID:  msg.GroupID,
		Segments: reply.Segments,
	}
}
