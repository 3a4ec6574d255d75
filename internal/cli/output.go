package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pfrederiksen/subwatch/internal/reaction"
	"github.com/pfrederiksen/subwatch/internal/subscription"
	"github.com/pkg/errors"
	"gopkg.in/guregu/null.v3"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// SubListItem is one catalog category in a user's listing
type SubListItem struct {
	Category   string     `json:"category"`
	Subscribed bool       `json:"subscribed"`
	MaxPrice   null.Float `json:"max_price"`
}

// SubListResult is the output of "sub list"
type SubListResult struct {
	UserID        string        `json:"user_id"`
	Subscriptions []SubListItem `json:"subscriptions"`
}

// UserRow summarizes one user for "sub users"
type UserRow struct {
	UserID     string   `json:"user_id"`
	Categories []string `json:"categories"`
}

// newSubListResult joins the per-category statuses with the user's price ceilings
func newSubListResult(userID string, statuses []subscription.Status, sub *subscription.Subscription) *SubListResult {
	result := &SubListResult{
		UserID:        userID,
		Subscriptions: make([]SubListItem, len(statuses)),
	}
	for i, status := range statuses {
		item := SubListItem{Category: status.Category, Subscribed: status.Subscribed}
		if status.Subscribed && sub != nil {
			item.MaxPrice = sub.Products[status.Category].MaxPrice
		}
		result.Subscriptions[i] = item
	}
	return result
}

// WriteSubList writes a user's listing in the specified format
func WriteSubList(w io.Writer, result *SubListResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		fmt.Fprintf(w, "%s:\n", result.UserID)
		for _, item := range result.Subscriptions {
			mark := " "
			if item.Subscribed {
				mark = "x"
			}
			line := fmt.Sprintf("  [%s] %s", mark, item.Category)
			if item.MaxPrice.Valid {
				line += " (max " + strconv.FormatFloat(item.MaxPrice.Float64, 'f', 2, 64) + ")"
			}
			fmt.Fprintln(w, line)
		}
		return nil
	default:
		return errors.Errorf("unknown format: %s", format)
	}
}

// WriteUsers writes the user summary in the specified format
func WriteUsers(w io.Writer, rows []UserRow, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatText:
		if len(rows) == 0 {
			fmt.Fprintln(w, "No subscribers.")
			return nil
		}
		for _, row := range rows {
			fmt.Fprintf(w, "%s (%d): %v\n", row.UserID, len(row.Categories), row.Categories)
		}
		fmt.Fprintf(w, "\nTotal: %d users\n", len(rows))
		return nil
	default:
		return errors.Errorf("unknown format: %s", format)
	}
}

// WriteLegend writes the glyph legend in the specified format
func WriteLegend(w io.Writer, legend []reaction.LegendEntry, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, legend)
	case FormatText:
		for _, entry := range legend {
			fmt.Fprintf(w, "%s %s\n", entry.Glyph, entry.Category)
		}
		return nil
	default:
		return errors.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}
