package app_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tartampluch/go-caltemp/internal/assistant"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// MockCompleter simulates the remote assistant using `testify/mock`.
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, creds assistant.Credentials, messages []assistant.Message) (string, error) {
	args := m.Called(ctx, creds, messages)
	return args.String(0), args.Error(1)
}

// staticKey implements app.KeySource.
type staticKey struct {
	key string
	err error
}

func (k staticKey) APIKey() (string, error) { return k.key, k.err }

// notification is one delivered title/body pair.
type notification struct {
	Title, Body string
}

// recordingNotifier collects notifications for assertions.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, notification{title, body})
	return nil
}

func (r *recordingNotifier) all() []notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification(nil), r.sent...)
}
