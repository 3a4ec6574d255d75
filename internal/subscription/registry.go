package subscription

import (
	"math"
	"sort"
	"sync"

	"github.com/pfrederiksen/subwatch/internal/catalog"
	"github.com/pfrederiksen/subwatch/internal/logger"
	"github.com/pfrederiksen/subwatch/internal/metrics"
	"github.com/pkg/errors"
	"gopkg.in/guregu/null.v3"
)

// Mutation operation names used in logs and metrics
const (
	OpAdd    = "add"
	OpRemove = "remove"
	OpClear  = "clear"
)

// Registry is the shared subscription store. Mutations run under an exclusive lock that also
// covers the write-through to storage; queries share a read lock.
type Registry struct {
	mu      sync.RWMutex
	catalog *catalog.Catalog
	store   Storage
	state   State
	metrics *metrics.Metrics
	log     *logger.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithMetrics records mutations on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithLogger replaces the default package logger
func WithLogger(l *logger.Logger) Option {
	return func(r *Registry) {
		r.log = l
	}
}

// Open loads the persisted state from store and returns a registry over it. A missing state
// yields an empty registry; corrupt state is returned as an error so startup can abort.
func Open(cat *catalog.Catalog, store Storage, opts ...Option) (*Registry, error) {
	state, err := store.Load()
	if err != nil {
		return nil, errors.Wrap(err, "loading subscriptions")
	}
	return New(cat, store, state, opts...), nil
}

// New creates a registry over an already loaded state. A nil state starts empty.
func New(cat *catalog.Catalog, store Storage, state State, opts ...Option) *Registry {
	if state == nil {
		state = NewState()
	}
	for _, sub := range state {
		if sub.Products == nil {
			sub.Products = make(map[string]Entry)
		}
	}

	r := &Registry{
		catalog: cat,
		store:   store,
		state:   state,
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.metrics.SetUsers(len(state))
	return r
}

// Catalog returns the catalog mutations are validated against
func (r *Registry) Catalog() *catalog.Catalog {
	return r.catalog
}

// ValidatePrice rejects ceilings that cannot be persisted or compared: negative, NaN and
// infinite values. A null price is valid.
func ValidatePrice(maxPrice null.Float) error {
	if !maxPrice.Valid {
		return nil
	}
	p := maxPrice.Float64
	if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return errors.Wrapf(ErrInvalidPrice, "%v", p)
	}
	return nil
}

// Add subscribes userID to category, replacing any previous price ceiling for it.
// Repeating the same call leaves the state unchanged.
func (r *Registry) Add(userID, category string, maxPrice null.Float) error {
	if !r.catalog.Contains(category) {
		r.metrics.ObserveMutation(OpAdd, metrics.ResultRejected)
		return errors.Wrapf(ErrUnknownCategory, "category %q", category)
	}
	if err := ValidatePrice(maxPrice); err != nil {
		r.metrics.ObserveMutation(OpAdd, metrics.ResultRejected)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.state[userID]
	if !ok {
		sub = &Subscription{Products: make(map[string]Entry, 1)}
		r.state[userID] = sub
	}
	sub.Products[category] = Entry{MaxPrice: maxPrice}

	fields := logger.Fields{"op": OpAdd, "user_id": userID, "category": category}
	if maxPrice.Valid {
		fields["max_price"] = maxPrice.Float64
	}
	return r.persist(OpAdd, fields)
}

// Remove unsubscribes userID from category. The user's entry stays in the registry even when
// no categories remain.
func (r *Registry) Remove(userID, category string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.state[userID]
	if !ok {
		r.metrics.ObserveMutation(OpRemove, metrics.ResultRejected)
		return errors.Wrapf(ErrNoSuchSubscription, "user %s has no subscriptions", userID)
	}
	if _, ok := sub.Products[category]; !ok {
		r.metrics.ObserveMutation(OpRemove, metrics.ResultRejected)
		return errors.Wrapf(ErrNoSuchSubscription, "user %s is not subscribed to %q", userID, category)
	}
	delete(sub.Products, category)

	return r.persist(OpRemove, logger.Fields{"op": OpRemove, "user_id": userID, "category": category})
}

// Clear drops every subscription of userID, including the user's entry itself
func (r *Registry) Clear(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.state[userID]; !ok {
		r.metrics.ObserveMutation(OpClear, metrics.ResultRejected)
		return errors.Wrapf(ErrNoSuchSubscription, "user %s has no subscriptions", userID)
	}
	delete(r.state, userID)

	return r.persist(OpClear, logger.Fields{"op": OpClear, "user_id": userID})
}

// persist must be called with the write lock held. On failure the in-memory change stays
// committed and the returned error matches ErrIO.
func (r *Registry) persist(op string, fields logger.Fields) error {
	r.metrics.SetUsers(len(r.state))

	if err := r.store.Save(r.state); err != nil {
		r.metrics.ObserveMutation(op, metrics.ResultIOError)
		r.log.Error("Persisting subscriptions failed", fields, err)
		if !errors.Is(err, ErrIO) {
			err = &IOError{Op: "saving subscriptions", Err: err}
		}
		return err
	}

	r.metrics.ObserveMutation(op, metrics.ResultOK)
	r.log.Info("Subscriptions updated", fields)
	return nil
}

// List reports, for every catalog category in catalog order, whether userID follows it.
// Unknown users are subscribed to nothing.
func (r *Registry) List(userID string) []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub := r.state[userID]
	names := r.catalog.Names()
	statuses := make([]Status, len(names))
	for i, name := range names {
		statuses[i] = Status{Category: name}
		if sub != nil {
			_, statuses[i].Subscribed = sub.Products[name]
		}
	}
	return statuses
}

// Has reports whether userID follows category
func (r *Registry) Has(userID, category string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.state[userID]
	if !ok {
		return false
	}
	_, ok = sub.Products[category]
	return ok
}

// Get returns a copy of the user's subscription
func (r *Registry) Get(userID string) (*Subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.state[userID]
	if !ok {
		return nil, false
	}
	return sub.clone(), true
}

// Users returns all user IDs present in the registry, sorted
func (r *Registry) Users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.state))
	for userID := range r.state {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

// Subscribers returns the sorted IDs of users following category
func (r *Registry) Subscribers(category string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0)
	for userID, sub := range r.state {
		if _, ok := sub.Products[category]; ok {
			users = append(users, userID)
		}
	}
	sort.Strings(users)
	return users
}

// Snapshot returns a deep copy of the current state
func (r *Registry) Snapshot() State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state.Clone()
}

// Len returns the number of users in the registry
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.state)
}
