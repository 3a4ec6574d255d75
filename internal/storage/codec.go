package storage

import (
	"encoding/json"
	"time"

	"github.com/pfrederiksen/subwatch/internal/subscription"
	"github.com/pkg/errors"
)

// FormatVersion is the newest state document version this build can read
const FormatVersion = 1

type document struct {
	Version       int                `json:"version"`
	UpdatedAt     string             `json:"updated_at,omitempty"`
	Subscriptions subscription.State `json:"subscriptions"`
}

// Encode serializes state as an indented, versioned JSON document
func Encode(state subscription.State) ([]byte, error) {
	if state == nil {
		state = subscription.NewState()
	}
	doc := document{
		Version:       FormatVersion,
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
		Subscriptions: state,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding state")
	}
	return data, nil
}

// Decode parses a state document. Unknown fields are ignored; anything that cannot be read
// as a supported version is reported as subscription.ErrCorruptState.
func Decode(data []byte) (subscription.State, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(subscription.ErrCorruptState, "parsing state: %v", err)
	}
	if doc.Version < 1 || doc.Version > FormatVersion {
		return nil, errors.Wrapf(subscription.ErrCorruptState, "unsupported state version %d", doc.Version)
	}

	state := doc.Subscriptions
	if state == nil {
		state = subscription.NewState()
	}
	for userID, sub := range state {
		if sub == nil {
			sub = &subscription.Subscription{}
			state[userID] = sub
		}
		if sub.Products == nil {
			sub.Products = make(map[string]subscription.Entry)
		}
	}
	return state, nil
}
