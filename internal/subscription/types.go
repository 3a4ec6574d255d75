package subscription

import (
	"sort"

	"gopkg.in/guregu/null.v3"
)

// Entry holds the settings of one subscribed category. An invalid MaxPrice means no ceiling.
type Entry struct {
	MaxPrice null.Float `json:"max_price"`
}

// Subscription is the set of categories one user follows, keyed by category name
type Subscription struct {
	Products map[string]Entry `json:"products"`
}

// Categories returns the subscribed category names in lexicographic order
func (s *Subscription) Categories() []string {
	names := make([]string, 0, len(s.Products))
	for name := range s.Products {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Subscription) clone() *Subscription {
	c := &Subscription{Products: make(map[string]Entry, len(s.Products))}
	for name, entry := range s.Products {
		c.Products[name] = entry
	}
	return c
}

// State maps user IDs to their subscriptions
type State map[string]*Subscription

// NewState creates an empty state
func NewState() State {
	return make(State)
}

// Clone returns a deep copy
func (s State) Clone() State {
	c := make(State, len(s))
	for userID, sub := range s {
		c[userID] = sub.clone()
	}
	return c
}

// Status reports whether a user follows one catalog category
type Status struct {
	Category   string `json:"category"`
	Subscribed bool   `json:"subscribed"`
}

// Storage persists the full subscription state
type Storage interface {
	Load() (State, error)
	Save(state State) error
}
