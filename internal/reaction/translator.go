package reaction

import (
	"sync"

	"github.com/pfrederiksen/subwatch/internal/catalog"
	"github.com/pfrederiksen/subwatch/internal/logger"
	"github.com/pfrederiksen/subwatch/internal/metrics"
	"github.com/pkg/errors"
	"gopkg.in/guregu/null.v3"
)

// Event kinds and outcomes used in logs and metrics
const (
	KindAdded   = "added"
	KindRemoved = "removed"

	OutcomeApplied = "applied"
	OutcomeIgnored = "ignored"
	OutcomeFailed  = "failed"
)

// ErrProtocolViolation describes a reaction that does not belong to the subscription protocol.
// Such events are dropped, never reported to the reacting user.
var ErrProtocolViolation = errors.New("reaction protocol violation")

// MessageRef identifies the message carrying the subscription legend and who posted it
type MessageRef struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`
}

// Event is a decoded reaction-add or reaction-remove
type Event struct {
	MessageID string `json:"message_id"`
	UserID    string `json:"user_id"`
	Glyph     string `json:"glyph"`
}

// Registry is the part of the subscription registry reactions can change
type Registry interface {
	Add(userID, category string, maxPrice null.Float) error
	Remove(userID, category string) error
}

// Translator applies reactions on the designated subscription message to a Registry
type Translator struct {
	mu       sync.RWMutex
	target   *MessageRef
	binding  *Binding
	registry Registry
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// Option configures a Translator
type Option func(*Translator)

// WithMetrics records reaction outcomes on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Translator) {
		t.metrics = m
	}
}

// WithLogger replaces the default package logger
func WithLogger(l *logger.Logger) Option {
	return func(t *Translator) {
		t.log = l
	}
}

// NewTranslator creates a Translator with no designated message
func NewTranslator(binding *Binding, registry Registry, opts ...Option) *Translator {
	t := &Translator{
		binding:  binding,
		registry: registry,
		log:      logger.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Binding returns the glyph binding reactions are resolved with
func (t *Translator) Binding() *Binding {
	return t.binding
}

// Designate makes ref the subscription message, replacing any previous one. The old message
// is left as-is; reactions on it are ignored from now on.
func (t *Translator) Designate(ref MessageRef) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.target = &ref
	t.log.Info("Subscription message designated", logger.Fields{"message_id": ref.ID})
}

// Designated returns the current subscription message, if any
func (t *Translator) Designated() (MessageRef, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.target == nil {
		return MessageRef{}, false
	}
	return *t.target, true
}

// OnReactionAdded subscribes the reacting user to the glyph's category
func (t *Translator) OnReactionAdded(ev Event) error {
	return t.apply(KindAdded, ev, func(category string) error {
		return t.registry.Add(ev.UserID, category, null.Float{})
	})
}

// OnReactionRemoved unsubscribes the reacting user from the glyph's category
func (t *Translator) OnReactionRemoved(ev Event) error {
	return t.apply(KindRemoved, ev, func(category string) error {
		return t.registry.Remove(ev.UserID, category)
	})
}

func (t *Translator) apply(kind string, ev Event, mutate func(category string) error) error {
	fields := logger.Fields{
		"kind":       kind,
		"message_id": ev.MessageID,
		"user_id":    ev.UserID,
		"glyph":      ev.Glyph,
	}

	category, err := t.resolve(ev)
	if err != nil {
		fields["reason"] = err.Error()
		t.metrics.ObserveReaction(kind, OutcomeIgnored)
		t.log.Debug("Reaction ignored", fields)
		return nil
	}

	fields["category"] = category.Name
	if err := mutate(category.Name); err != nil {
		t.metrics.ObserveReaction(kind, OutcomeFailed)
		return errors.Wrapf(err, "reaction %s on %s", kind, ev.MessageID)
	}

	t.metrics.ObserveReaction(kind, OutcomeApplied)
	t.log.Debug("Reaction applied", fields)
	return nil
}

// resolve checks the event against the designated message and the binding
func (t *Translator) resolve(ev Event) (catalog.Category, error) {
	target, ok := t.Designated()
	if !ok {
		return catalog.Category{}, errors.Wrap(ErrProtocolViolation, "no subscription message designated")
	}
	if ev.MessageID != target.ID {
		return catalog.Category{}, errors.Wrapf(ErrProtocolViolation, "message %s is not the subscription message", ev.MessageID)
	}
	if ev.UserID == target.AuthorID {
		return catalog.Category{}, errors.Wrap(ErrProtocolViolation, "reaction by the subscription message author")
	}
	category, ok := t.binding.Lookup(ev.Glyph)
	if !ok {
		return catalog.Category{}, errors.Wrapf(ErrProtocolViolation, "glyph %q is not bound", ev.Glyph)
	}
	return category, nil
}
