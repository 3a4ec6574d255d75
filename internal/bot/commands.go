package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/pfrederiksen/subwatch/internal/catalog"
	"github.com/pfrederiksen/subwatch/internal/logger"
	"github.com/pfrederiksen/subwatch/internal/reaction"
	"github.com/pfrederiksen/subwatch/internal/subscription"
	"github.com/pkg/errors"
	"gopkg.in/guregu/null.v3"
)

func handleAddSub(_ context.Context, h *Handler, cmd Command) (string, error) {
	if len(cmd.Args) == 0 {
		return formatUsage("addsub"), nil
	}

	category, maxPrice, err := parseCategoryAndPrice(cmd.Args, h.registry.Catalog())
	if err != nil {
		return "❌ " + err.Error() + "\n\n" + formatUsage("addsub"), nil
	}

	if err := h.registry.Add(cmd.UserID, category, maxPrice); err != nil {
		return h.mutationFailure(err, cmd, category)
	}
	return formatAdded(category, maxPrice), nil
}

func handleRemoveSub(_ context.Context, h *Handler, cmd Command) (string, error) {
	if len(cmd.Args) == 0 {
		return formatUsage("rmsub"), nil
	}

	category := joinArgs(cmd.Args)
	if err := h.registry.Remove(cmd.UserID, category); err != nil {
		return h.mutationFailure(err, cmd, category)
	}
	return formatRemoved(category), nil
}

func handleClearSubs(_ context.Context, h *Handler, cmd Command) (string, error) {
	if err := h.registry.Clear(cmd.UserID); err != nil {
		return h.mutationFailure(err, cmd, "")
	}
	return "✅ All of your subscriptions were removed.", nil
}

func handleSubList(_ context.Context, h *Handler, cmd Command) (string, error) {
	statuses := h.registry.List(cmd.UserID)
	sub, _ := h.registry.Get(cmd.UserID)
	return formatSubList(cmd.UserID, statuses, sub), nil
}

func handleSubChannel(ctx context.Context, h *Handler, cmd Command) (string, error) {
	legend := h.translator.Binding().Legend()
	if len(legend) == 0 {
		return "❌ There are no categories to subscribe to.", nil
	}

	messageID, err := h.notifier.Post(ctx, cmd.ChannelID, formatLegend(legend))
	if err != nil {
		return "❌ Could not post the subscription message.", errors.Wrap(err, "posting subscription legend")
	}
	h.translator.Designate(reaction.MessageRef{ID: messageID, AuthorID: h.botUserID})

	for _, entry := range legend {
		if err := h.notifier.React(ctx, cmd.ChannelID, messageID, entry.Glyph); err != nil {
			return "⚠️ The subscription message was posted but not every reaction could be added.",
				errors.Wrapf(err, "seeding reaction %s", entry.Glyph)
		}
	}

	h.log.Info("Subscription channel set", logger.Fields{
		"channel_id": cmd.ChannelID,
		"message_id": messageID,
		"categories": len(legend),
	})
	return "", nil
}

func handleSubscribers(_ context.Context, h *Handler, cmd Command) (string, error) {
	if len(cmd.Args) == 0 {
		return formatUsage("subscribers"), nil
	}

	category := joinArgs(cmd.Args)
	if !h.registry.Catalog().Contains(category) {
		return formatUnknownCategory(category, h.registry.Catalog().Names()), nil
	}
	return formatSubscribers(category, h.registry.Subscribers(category)), nil
}

func handleHelp(_ context.Context, _ *Handler, cmd Command) (string, error) {
	if len(cmd.Args) > 0 {
		return getCommandHelp(cmd.Args[0]), nil
	}
	return getHelpMessage(), nil
}

// mutationFailure turns a registry error into a reply. Logic errors are answered and
// swallowed; persistence errors are answered and also returned.
func (h *Handler) mutationFailure(err error, cmd Command, category string) (string, error) {
	switch {
	case errors.Is(err, subscription.ErrUnknownCategory):
		return formatUnknownCategory(category, h.registry.Catalog().Names()), nil
	case errors.Is(err, subscription.ErrInvalidPrice):
		return "❌ Max price must be a number of zero or more.\n\n" + formatUsage("addsub"), nil
	case errors.Is(err, subscription.ErrNoSuchSubscription):
		if category == "" {
			return "ℹ️ You have no subscriptions.", nil
		}
		return "ℹ️ You are not subscribed to " + category + ".", nil
	case errors.Is(err, subscription.ErrIO):
		h.log.Error("Subscription change not persisted", logger.Fields{
			"command": normalizeName(cmd.Name),
			"user_id": cmd.UserID,
		}, err)
		return "⚠️ Your change was applied but could not be saved. It may be lost if the bot restarts.", err
	default:
		return "❌ Something went wrong. Please try again later.", err
	}
}

// parseCategoryAndPrice splits args into a category name and an optional trailing price.
// A name that is itself a catalog entry wins, so categories ending in a number still work.
func parseCategoryAndPrice(args []string, cat *catalog.Catalog) (string, null.Float, error) {
	name := joinArgs(args)
	if cat.Contains(name) || len(args) < 2 {
		return name, null.Float{}, nil
	}

	last := args[len(args)-1]
	price, err := strconv.ParseFloat(strings.TrimPrefix(last, "$"), 64)
	if err != nil {
		return name, null.Float{}, nil
	}
	maxPrice := null.FloatFrom(price)
	if subscription.ValidatePrice(maxPrice) != nil {
		return "", null.Float{}, errors.Errorf("invalid max price: %s", last)
	}
	return joinArgs(args[:len(args)-1]), maxPrice, nil
}

func joinArgs(args []string) string {
	return strings.Trim(strings.TrimSpace(strings.Join(args, " ")), `"'`)
}
