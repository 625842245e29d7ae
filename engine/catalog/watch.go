package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/car-explorer/pkg/natsutil"
)

// ReloadSubject is the NATS subject that requests a catalog reload.
const ReloadSubject = "carexplorer.catalog.reload"

// ReloadRequest is the optional payload of a reload message.
type ReloadRequest struct {
	Reason string `json:"reason,omitempty"`
}

const debounce = 100 * time.Millisecond

// Watcher reloads a file-backed catalog when the file changes. The parent
// directory is watched so that editors replacing the file by rename are seen.
type Watcher struct {
	path   string
	reload func(context.Context) error
	log    *slog.Logger

	fw   *fsnotify.Watcher
	done chan struct{}
}

func NewWatcher(path string, reload func(context.Context) error, log *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: watch %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("catalog: create watcher: %w", err)
	}
	return &Watcher{path: abs, reload: reload, log: log, fw: fw, done: make(chan struct{})}, nil
}

// Start begins watching. The loop exits when ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fw.Add(filepath.Dir(w.path)); err != nil {
		w.fw.Close()
		return fmt.Errorf("catalog: watch %s: %w", w.path, err)
	}
	go w.loop(ctx)
	return nil
}

// Stop closes the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.fw.Close()
	<-w.done
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.fw.Close()
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}
		case <-timer.C:
			if err := w.reload(ctx); err != nil {
				w.log.Warn("catalog watcher reload failed", "path", w.path, "err", err)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("catalog watcher error", "path", w.path, "err", err)
		}
	}
}

// SubscribeReload reloads the catalog whenever a message arrives on
// ReloadSubject. It returns once the server has registered the
// subscription, so requests published afterwards are not lost.
func SubscribeReload(nc *nats.Conn, r *Reloader, log *slog.Logger) (*nats.Subscription, error) {
	sub, err := natsutil.Subscribe(nc, ReloadSubject, func(ctx context.Context, req ReloadRequest) {
		log.Info("catalog reload requested", "reason", req.Reason)
		_ = r.Reload(ctx)
	}, func(err error) {
		log.Warn("catalog reload request dropped", "err", err)
	})
	if err != nil {
		return nil, err
	}
	if err := nc.FlushTimeout(5 * time.Second); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("catalog: confirm reload subscription: %w", err)
	}
	return sub, nil
}
