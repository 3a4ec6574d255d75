// Package storage persists the subscription registry.
//
// The state is a versioned JSON document holding every user's subscribed categories and price
// ceilings. FileStore keeps it in a single file (subscription_data.json by default) inside a
// data directory and replaces that file atomically on every save. GistStore keeps the same
// document in a private GitHub Gist. The default data directory is ~/.local/share/subwatch/.
package storage
