package gateway

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/subwatch/internal/bot"
	"github.com/pfrederiksen/subwatch/internal/catalog"
	"github.com/pfrederiksen/subwatch/internal/logger"
	"github.com/pfrederiksen/subwatch/internal/notifier"
	"github.com/pfrederiksen/subwatch/internal/reaction"
	"github.com/pfrederiksen/subwatch/internal/storage"
	"github.com/pfrederiksen/subwatch/internal/subscription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	gateway    *Gateway
	registry   *subscription.Registry
	translator *reaction.Translator
	store      *storage.FileStore
	out        *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.SetDefault(logger.New(logger.LevelError, io.Discard))

	cat := catalog.New("Books", "Toys")
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	registry, err := subscription.Open(cat, store)
	require.NoError(t, err)
	binding, err := reaction.NewBinding(cat, reaction.DefaultGlyphs)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	n := notifier.NewStreamNotifier(out)
	translator := reaction.NewTranslator(binding, registry)
	handler := bot.NewHandler(registry, translator, n, "bot-1")

	return &fixture{
		gateway:    New(handler, translator, n),
		registry:   registry,
		translator: translator,
		store:      store,
		out:        out,
	}
}

func (f *fixture) actions(t *testing.T) []notifier.Action {
	t.Helper()
	var actions []notifier.Action
	scanner := bufio.NewScanner(strings.NewReader(f.out.String()))
	for scanner.Scan() {
		var a notifier.Action
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &a))
		actions = append(actions, a)
	}
	return actions
}

func TestGateway_CommandsAndReactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.gateway.Dispatch(ctx, Inbound{Type: TypeCommand, Name: "subchannel", UserID: "admin", ChannelID: "subs"}))
	ref, ok := f.translator.Designated()
	require.True(t, ok)

	input := strings.Join([]string{
		fmt.Sprintf(`{"type":"reaction_add","message_id":%q,"user_id":"u1","glyph":"0⃣"}`, ref.ID),
		fmt.Sprintf(`{"type":"reaction_add","message_id":%q,"user_id":"u1","glyph":"1⃣"}`, ref.ID),
		fmt.Sprintf(`{"type":"reaction_remove","message_id":%q,"user_id":"u1","glyph":"1⃣"}`, ref.ID),
		`{"type":"reaction_add","message_id":"somewhere-else","user_id":"u2","glyph":"0⃣"}`,
		`not json at all`,
		``,
		`{"type":"command","name":"addsub","user_id":"u3","channel_id":"dm-u3","args":["Toys","15"]}`,
		`{"type":"command","name":"sublist","user_id":"u1","channel_id":"dm-u1"}`,
		`{"type":"mystery"}`,
	}, "\n")

	require.NoError(t, f.gateway.Run(ctx, strings.NewReader(input)))

	assert.True(t, f.registry.Has("u1", "Books"))
	assert.False(t, f.registry.Has("u1", "Toys"))
	assert.False(t, f.registry.Has("u2", "Books"))
	assert.True(t, f.registry.Has("u3", "Toys"))

	persisted, err := f.store.Load()
	require.NoError(t, err)
	assert.Equal(t, f.registry.Snapshot(), persisted)

	actions := f.actions(t)
	require.Len(t, actions, 1+2+2, "legend post, two seed reactions, two replies")
	assert.Equal(t, notifier.Action{Type: notifier.ActionPost, ChannelID: "subs", MessageID: ref.ID, Text: "0⃣ Books\n1⃣ Toys"}, actions[0])
	assert.Equal(t, notifier.ActionReact, actions[1].Type)
	assert.Equal(t, "dm-u3", actions[3].ChannelID)
	assert.Equal(t, "✅ Subscribed to Toys at or below 15.00.", actions[3].Text)
	assert.Equal(t, "dm-u1", actions[4].ChannelID)
	assert.Contains(t, actions[4].Text, "✅ Books")
}

func TestGateway_DispatchUnknownType(t *testing.T) {
	f := newFixture(t)

	err := f.gateway.Dispatch(context.Background(), Inbound{Type: "typing"})
	assert.Error(t, err)
}

func TestGateway_RunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	pr, pw := io.Pipe()
	defer pw.Close() // nolint:errcheck

	done := make(chan error, 1)
	go func() {
		done <- f.gateway.Run(ctx, pr)
	}()

	_, err := pw.Write([]byte(`{"type":"command","name":"addsub","user_id":"u1","channel_id":"c","args":["Books"]}` + "\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return f.registry.Has("u1", "Books") }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// the reader was closed, so the scanning goroutine is not left blocked on it
	_, err = pw.Write([]byte("{}\n"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
