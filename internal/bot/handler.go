package bot

import (
	"context"
	"sort"
	"strings"

	"github.com/pfrederiksen/subwatch/internal/logger"
	"github.com/pfrederiksen/subwatch/internal/notifier"
	"github.com/pfrederiksen/subwatch/internal/reaction"
	"github.com/pfrederiksen/subwatch/internal/subscription"
)

// Command is a parsed, authorized chat command
type Command struct {
	Name      string   `json:"name"`
	UserID    string   `json:"user_id"`
	ChannelID string   `json:"channel_id"`
	Args      []string `json:"args,omitempty"`
}

type commandFunc func(ctx context.Context, h *Handler, cmd Command) (string, error)

type commandSpec struct {
	usage       string
	description string
	run         commandFunc
}

// commands is the dispatch table, keyed by lower-case command name. It is filled in init
// because help reads it.
var commands map[string]commandSpec

func init() {
	commands = map[string]commandSpec{
		"addsub": {
			usage:       "addsub <category> [max_price]",
			description: "Subscribe to a product category, optionally only below a price",
			run:         handleAddSub,
		},
		"rmsub": {
			usage:       "rmsub <category>",
			description: "Unsubscribe from a product category",
			run:         handleRemoveSub,
		},
		"clearsubs": {
			usage:       "clearsubs",
			description: "Remove all of your subscriptions",
			run:         handleClearSubs,
		},
		"sublist": {
			usage:       "sublist",
			description: "Show which categories you are subscribed to",
			run:         handleSubList,
		},
		"subchannel": {
			usage:       "subchannel",
			description: "Post the reaction legend in this channel and use it for subscriptions",
			run:         handleSubChannel,
		},
		"subscribers": {
			usage:       "subscribers <category>",
			description: "List the users subscribed to a category",
			run:         handleSubscribers,
		},
		"help": {
			usage:       "help [command]",
			description: "Show available commands",
			run:         handleHelp,
		},
	}
}

// Handler answers commands against one registry and translator
type Handler struct {
	registry   *subscription.Registry
	translator *reaction.Translator
	notifier   notifier.Notifier
	botUserID  string
	log        *logger.Logger
}

// NewHandler creates a Handler. botUserID is recorded as the author of the subscription
// message so the bot's own seeding reactions are not treated as subscriptions.
func NewHandler(registry *subscription.Registry, translator *reaction.Translator, n notifier.Notifier, botUserID string) *Handler {
	return &Handler{
		registry:   registry,
		translator: translator,
		notifier:   n,
		botUserID:  botUserID,
		log:        logger.Default(),
	}
}

// Handle runs a command and returns the reply text. An empty reply means nothing should be
// sent. The error is non-nil only for failures the operator must see, such as a state write
// that did not reach disk; the reply already explains it to the user.
func (h *Handler) Handle(ctx context.Context, cmd Command) (string, error) {
	name := normalizeName(cmd.Name)
	spec, ok := commands[name]
	if !ok {
		return formatUnknownCommand(cmd.Name), nil
	}

	h.log.Debug("Handling command", logger.Fields{
		"command":    name,
		"user_id":    cmd.UserID,
		"channel_id": cmd.ChannelID,
	})
	return spec.run(ctx, h, cmd)
}

// CommandNames returns the dispatch table's command names, sorted
func CommandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimLeft(name, "/!")
}
