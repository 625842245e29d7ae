package prefs

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/car-explorer/pkg/natsutil"
)

// ChangedSubject is the NATS subject preference changes are published on.
const ChangedSubject = "carexplorer.prefs.changed"

// Kind is the preference a change touched.
type Kind string

const (
	KindFavorites  Kind = "favorites"
	KindComparison Kind = "comparison"
	KindTheme      Kind = "theme"
)

// Action is what happened to it.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
	ActionClear  Action = "clear"
	ActionImport Action = "import"
	ActionSet    Action = "set"
)

// ChangeEvent describes one successful mutation.
type ChangeEvent struct {
	Session string    `json:"session"`
	Kind    Kind      `json:"kind"`
	Action  Action    `json:"action"`
	CarID   int       `json:"carId,omitempty"`
	Theme   Theme     `json:"theme,omitempty"`
	IDs     []int     `json:"ids"`
	At      time.Time `json:"at"`
}

// Notifier receives change events. Implementations must not block for long.
type Notifier interface {
	Notify(ctx context.Context, ev ChangeEvent)
}

// NATSNotifier publishes change events on ChangedSubject.
type NATSNotifier struct {
	nc  *nats.Conn
	log *slog.Logger
}

func NewNATSNotifier(nc *nats.Conn, log *slog.Logger) *NATSNotifier {
	return &NATSNotifier{nc: nc, log: log}
}

func (n *NATSNotifier) Notify(ctx context.Context, ev ChangeEvent) {
	if err := natsutil.Publish(ctx, n.nc, ChangedSubject, ev); err != nil {
		n.log.Warn("preference change not published", "session", ev.Session, "kind", ev.Kind, "err", err)
	}
}
