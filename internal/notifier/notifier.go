package notifier

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Notifier defines the outbound actions the bot performs on the chat platform
type Notifier interface {
	// Post sends text to a channel and returns the new message's ID
	Post(ctx context.Context, channelID, text string) (string, error)
	// React adds glyph as the bot's own reaction to a message
	React(ctx context.Context, channelID, messageID, glyph string) error
}

// Action types written by StreamNotifier
const (
	ActionPost  = "post"
	ActionReact = "react"
)

// Action is one outbound instruction for the platform adapter
type Action struct {
	Type      string `json:"type"`
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	Text      string `json:"text,omitempty"`
	Glyph     string `json:"glyph,omitempty"`
}

// StreamNotifier writes actions as newline-delimited JSON. Message IDs are assigned locally
// and the adapter is expected to map them to platform IDs.
type StreamNotifier struct {
	mu    sync.Mutex
	enc   *json.Encoder
	newID func() string
}

// NewStreamNotifier creates a StreamNotifier writing to w
func NewStreamNotifier(w io.Writer) *StreamNotifier {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &StreamNotifier{
		enc:   enc,
		newID: func() string { return uuid.NewString() },
	}
}

// Post writes a post action and returns its generated message ID
func (n *StreamNotifier) Post(ctx context.Context, channelID, text string) (string, error) {
	if text == "" {
		return "", errors.New("message text is required")
	}
	id := n.newID()
	if err := n.write(ctx, Action{Type: ActionPost, ChannelID: channelID, MessageID: id, Text: text}); err != nil {
		return "", err
	}
	return id, nil
}

// React writes a react action
func (n *StreamNotifier) React(ctx context.Context, channelID, messageID, glyph string) error {
	return n.write(ctx, Action{Type: ActionReact, ChannelID: channelID, MessageID: messageID, Glyph: glyph})
}

func (n *StreamNotifier) write(ctx context.Context, action Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.enc.Encode(action); err != nil {
		return errors.Wrapf(err, "writing %s action", action.Type)
	}
	return nil
}
