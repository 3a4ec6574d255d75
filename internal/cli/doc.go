// Package cli implements the subwatch command-line interface.
//
// The root command loads configuration and sets up logging. serve runs the bot against a
// newline-delimited JSON event stream. sub edits and inspects the subscription state offline
// through the same registry. catalog prints the reaction legend. Listing commands write
// text or JSON.
package cli
