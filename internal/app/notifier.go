package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/tartampluch/go-caltemp/internal/config"
)

// Notifier delivers a user-visible notification.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// LogNotifier records notifications as structured log entries.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, title, body string) error {
	slog.InfoContext(ctx, config.MsgNotify,
		config.LogKeyComponent, config.CompNotifier,
		config.LogKeyTitle, title,
		config.LogKeyBody, body)
	return nil
}

// WriterNotifier prints notifications as text lines, one per call.
type WriterNotifier struct {
	W  io.Writer
	mu sync.Mutex
}

func (n *WriterNotifier) Notify(_ context.Context, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintf(n.W, config.FormatNotifyLine, title, body)
	return err
}

// MultiNotifier fans a notification out to every Notifier and returns the
// first error.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, title, body string) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, title, body); err != nil && first == nil {
			first = err
		}
	}
	return first
}
