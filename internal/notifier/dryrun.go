package notifier

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// DryRunNotifier prints what would be posted without talking to any platform
type DryRunNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewDryRunNotifier creates a new dry-run notifier
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	return &DryRunNotifier{out: out}
}

// Post prints the message that would be sent
func (n *DryRunNotifier) Post(_ context.Context, channelID, text string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := uuid.NewString()
	fmt.Fprintf(n.out, "[DRY RUN] Would send to %s (message %s):\n%s\n\n", channelID, id, text)
	return id, nil
}

// React prints the reaction that would be added
func (n *DryRunNotifier) React(_ context.Context, channelID, messageID, glyph string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	fmt.Fprintf(n.out, "[DRY RUN] Would react %s on %s in %s\n", glyph, messageID, channelID)
	return nil
}
