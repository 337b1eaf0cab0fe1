package bot

import (
	"fmt"

	"github.com/craftwatch/craftwatch/internal/render"
)

// Message is one incoming chat message as delivered by a transport.
type Message struct {
	// ID is the transport's message id, echoed back on the reply for
	// correlation. May be empty.
	ID string `json:"id,omitempty"`

	// GroupID selects the chat group's registry document.
	GroupID string `json:"group_id"`

	// Sender names the author. The bot only logs it.
	Sender string `json:"sender,omitempty"`

	// Text is the raw message body.
	Text string `json:"text"`
}

// Segment is one piece of a reply: plain text or an inline image.
type Segment struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// Reply is the bot's answer to one message.
type Reply struct {
	Segments []Segment `json:"segments"`
}

// TextSegment builds a plain text segment.
func TextSegment(text string) Segment {
	return Segment{Type: "text", Text: text}
}

// ImageSegment builds an inline image segment from a rendered card.
func ImageSegment(res *render.Result) Segment {
	return Segment{
		Type:     "image",
		Data:     res.ImageBase64,
		MimeType: res.MimeType,
		Width:    res.Width,
		Height:   res.Height,
	}
}

// replyText builds a single-segment text reply.
func replyText(format string, args ...interface{}) *Reply {
	return &Reply{Segments: []Segment{TextSegment(fmt.Sprintf(format, args...))}}
}
