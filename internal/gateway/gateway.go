// Package gateway connects a chat platform adapter to the bot through newline-delimited JSON.
//
// Each input line is one inbound event: a parsed command or a reaction add/remove. Command
// replies and other outbound actions go through a notifier.Notifier.
package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/pfrederiksen/subwatch/internal/bot"
	"github.com/pfrederiksen/subwatch/internal/logger"
	"github.com/pfrederiksen/subwatch/internal/notifier"
	"github.com/pfrederiksen/subwatch/internal/reaction"
	"github.com/pkg/errors"
)

// Inbound event types
const (
	TypeCommand        = "command"
	TypeReactionAdd    = "reaction_add"
	TypeReactionRemove = "reaction_remove"
)

const maxLineSize = 1 << 20

// Inbound is one decoded input line
type Inbound struct {
	Type      string   `json:"type"`
	UserID    string   `json:"user_id"`
	ChannelID string   `json:"channel_id,omitempty"`
	Name      string   `json:"name,omitempty"`
	Args      []string `json:"args,omitempty"`
	MessageID string   `json:"message_id,omitempty"`
	Glyph     string   `json:"glyph,omitempty"`
}

// Gateway dispatches inbound events to the command handler and reaction translator
type Gateway struct {
	handler    *bot.Handler
	translator *reaction.Translator
	notifier   notifier.Notifier
	log        *logger.Logger
}

// New creates a Gateway
func New(handler *bot.Handler, translator *reaction.Translator, n notifier.Notifier) *Gateway {
	return &Gateway{
		handler:    handler,
		translator: translator,
		notifier:   n,
		log:        logger.Default(),
	}
}

// Run processes events from r until EOF or until ctx is cancelled. Malformed lines and failed
// events are logged and skipped; only read errors end the loop early.
//
// On cancellation r is closed if it implements io.Closer, which releases the reading
// goroutine. A plain io.Reader blocked in Read keeps that goroutine until the read returns.
func (g *Gateway) Run(ctx context.Context, r io.Reader) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	processed := 0
	for {
		select {
		case <-ctx.Done():
			if c, ok := r.(io.Closer); ok {
				c.Close() // nolint:errcheck
			}
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				g.log.Info("Event stream closed", logger.Fields{"processed": processed})
				select {
				case err := <-readErr:
					if err != nil {
						return errors.Wrap(err, "reading events")
					}
				default:
				}
				return nil
			}
			if len(line) == 0 {
				continue
			}
			processed++
			g.process(ctx, line)
		}
	}
}

func (g *Gateway) process(ctx context.Context, line []byte) {
	var in Inbound
	if err := json.Unmarshal(line, &in); err != nil {
		g.log.Warn("Skipping malformed event", logger.Fields{"error": err.Error()})
		return
	}

	if err := g.Dispatch(ctx, in); err != nil {
		g.log.Error("Event failed", logger.Fields{
			"type":    in.Type,
			"user_id": in.UserID,
		}, err)
	}
}

// Dispatch handles a single inbound event
func (g *Gateway) Dispatch(ctx context.Context, in Inbound) error {
	switch in.Type {
	case TypeCommand:
		return g.command(ctx, in)
	case TypeReactionAdd:
		return g.translator.OnReactionAdded(reactionEvent(in))
	case TypeReactionRemove:
		return g.translator.OnReactionRemoved(reactionEvent(in))
	default:
		return errors.Errorf("unknown event type %q", in.Type)
	}
}

func (g *Gateway) command(ctx context.Context, in Inbound) error {
	reply, err := g.handler.Handle(ctx, bot.Command{
		Name:      in.Name,
		UserID:    in.UserID,
		ChannelID: in.ChannelID,
		Args:      in.Args,
	})
	if reply != "" {
		if _, postErr := g.notifier.Post(ctx, in.ChannelID, reply); postErr != nil {
			g.log.Error("Sending reply failed", logger.Fields{"channel_id": in.ChannelID}, postErr)
		}
	}
	return err
}

func reactionEvent(in Inbound) reaction.Event {
	return reaction.Event{
		MessageID: in.MessageID,
		UserID:    in.UserID,
		Glyph:     in.Glyph,
	}
}
