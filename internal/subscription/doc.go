// Package subscription manages per-user subscriptions to product categories.
//
// The Registry maps user IDs to the categories they follow, each with an optional price
// ceiling. Every mutation is validated against the category catalog and written through to a
// Storage before the call returns. A single Registry is shared by the command and reaction
// paths and serializes them internally.
package subscription
