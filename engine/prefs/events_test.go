package prefs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WessleyAI/car-explorer/pkg/natsutil/natstest"
)

func TestNATSNotifierPublishes(t *testing.T) {
	nc := natstest.Connect(t)

	msgs := make(chan *nats.Msg, 4)
	sub, err := nc.ChanSubscribe(ChangedSubject, msgs)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.NoError(t, nc.Flush())

	s := New(NewMemoryKV(), "abc", WithLogger(quiet()), WithNotifier(NewNATSNotifier(nc, quiet())))
	require.True(t, s.AddToComparison(context.Background(), 12))

	select {
	case m := <-msgs:
		var ev ChangeEvent
		require.NoError(t, json.Unmarshal(m.Data, &ev))
		assert.Equal(t, "abc", ev.Session)
		assert.Equal(t, KindComparison, ev.Kind)
		assert.Equal(t, ActionAdd, ev.Action)
		assert.Equal(t, 12, ev.CarID)
		assert.Equal(t, []int{12}, ev.IDs)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event published")
	}
}

func TestNATSNotifierClosedConnection(t *testing.T) {
	nc := natstest.Connect(t)
	nc.Close()

	n := NewNATSNotifier(nc, quiet())
	assert.NotPanics(t, func() {
		n.Notify(context.Background(), ChangeEvent{Session: "x", Kind: KindTheme})
	})
}
