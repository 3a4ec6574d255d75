package bot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/subwatch/internal/reaction"
	"github.com/pfrederiksen/subwatch/internal/subscription"
	"gopkg.in/guregu/null.v3"
)

const (
	subscribedMark    = "✅"
	notSubscribedMark = "🟥"
)

// formatLegend renders one "glyph category" line per binding entry
func formatLegend(legend []reaction.LegendEntry) string {
	lines := make([]string, len(legend))
	for i, entry := range legend {
		lines[i] = entry.Glyph + " " + entry.Category
	}
	return strings.Join(lines, "\n")
}

func formatSubList(userID string, statuses []subscription.Status, sub *subscription.Subscription) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Active Subscriptions for %s\n\n", userID)

	for _, status := range statuses {
		if !status.Subscribed {
			fmt.Fprintf(&b, "%s %s\n", notSubscribedMark, status.Category)
			continue
		}
		line := fmt.Sprintf("%s %s", subscribedMark, status.Category)
		if sub != nil {
			if price := sub.Products[status.Category].MaxPrice; price.Valid {
				line += " (max " + formatPrice(price.Float64) + ")"
			}
		}
		b.WriteString(line + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatAdded(category string, maxPrice null.Float) string {
	if maxPrice.Valid {
		return fmt.Sprintf("✅ Subscribed to %s at or below %s.", category, formatPrice(maxPrice.Float64))
	}
	return fmt.Sprintf("✅ Subscribed to %s.", category)
}

func formatRemoved(category string) string {
	return fmt.Sprintf("✅ Unsubscribed from %s.", category)
}

func formatUnknownCategory(category string, available []string) string {
	return fmt.Sprintf("❌ Unknown category: %s\n\nAvailable categories: %s", category, strings.Join(available, ", "))
}

func formatSubscribers(category string, users []string) string {
	if len(users) == 0 {
		return fmt.Sprintf("Nobody is subscribed to %s.", category)
	}
	sorted := append([]string(nil), users...)
	sort.Strings(sorted)
	return fmt.Sprintf("👥 %d subscribed to %s:\n%s", len(sorted), category, strings.Join(sorted, "\n"))
}

func formatUnknownCommand(name string) string {
	return fmt.Sprintf("❌ Unknown command: %s\n\nUse help to see available commands.", name)
}

func formatPrice(price float64) string {
	return fmt.Sprintf("%.2f", price)
}
