package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"adoptipet/internal/domain/users"
	"adoptipet/internal/platform/apperr"
	"adoptipet/internal/platform/logger"
	"adoptipet/internal/ports/notifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu    sync.Mutex
	sent  []notifier.Message
	fail  bool
	block chan struct{}
}

func (s *recordingSink) Send(ctx context.Context, msg notifier.Message) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("smtp down")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSink) messages() []notifier.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notifier.Message(nil), s.sent...)
}

type directory map[string]users.User

func (d directory) GetByID(ctx context.Context, id string) (users.User, error) {
	u, ok := d[id]
	if !ok {
		return users.User{}, apperr.ErrNotFound
	}
	return u, nil
}

func TestDispatcher_ResolvesRecipients(t *testing.T) {
	sink := &recordingSink{}
	people := directory{
		"u1": {ID: "u1", Email: "u1@example.com"},
		"u2": {ID: "u2", Email: "U1@example.com"},
		"u3": {ID: "u3"},
	}
	d := NewDispatcher(sink, people, logger.NewNop(), 8)
	d.Start(context.Background())

	require.True(t, d.Enqueue(notifier.Message{Kind: "adoption_completed", UserIDs: []string{"u1", "u2", "u3", "ghost"}, To: []string{"ops@example.com"}}))
	require.True(t, d.Enqueue(notifier.Message{Kind: "nobody", UserIDs: []string{"u3"}}))

	require.Eventually(t, func() bool { return len(sink.messages()) == 1 }, time.Second, 5*time.Millisecond)
	d.Stop()

	got := sink.messages()
	require.Len(t, got, 1)
	assert.Equal(t, []string{"ops@example.com", "u1@example.com"}, got[0].To)
}

func TestDispatcher_DropsWhenFullAndSurvivesSinkErrors(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	d := NewDispatcher(sink, nil, nil, 1)
	d.Start(context.Background())

	msg := notifier.Message{Kind: "k", To: []string{"a@example.com"}}
	// El worker toma el primero y queda bloqueado en Send; el segundo llena la cola.
	require.True(t, d.Enqueue(msg))
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, time.Millisecond)
	require.True(t, d.Enqueue(msg))
	assert.False(t, d.Enqueue(msg))

	sink.mu.Lock()
	sink.fail = true
	sink.mu.Unlock()
	close(sink.block)

	d.Stop()
	assert.Empty(t, sink.messages())
}

func TestDispatcher_StopDrainsQueue(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, nil, nil, 4)

	for i := 0; i < 3; i++ {
		require.True(t, d.Enqueue(notifier.Message{Kind: "k", To: []string{"a@example.com"}}))
	}
	d.Start(context.Background())
	d.Stop()
	d.Stop()

	assert.Len(t, sink.messages(), 3)
}
