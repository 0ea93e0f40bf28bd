// Package notify entrega las notificaciones fuera del request: los servicios
// encolan y un único worker resuelve destinatarios y llama al sink.
package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"adoptipet/internal/domain/users"
	"adoptipet/internal/platform/logger"
	"adoptipet/internal/ports/notifier"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "adoptipet_notifications_total",
		Help: "Notificaciones por kind y resultado (sent, dropped, failed, skipped).",
	},
	[]string{"kind", "result"},
)

const (
	DefaultQueueSize = 256

	sendTimeout  = 10 * time.Second
	drainTimeout = 5 * time.Second
)

type Dispatcher struct {
	sink  notifier.Notifier
	users users.Reader
	log   logger.Logger
	queue chan notifier.Message

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewDispatcher: people puede ser nil si todos los mensajes traen To.
func NewDispatcher(sink notifier.Notifier, people users.Reader, log logger.Logger, size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{
		sink:  sink,
		users: people,
		log:   log.With(map[string]any{"component": "notify"}),
		queue: make(chan notifier.Message, size),
	}
}

// Enqueue nunca bloquea: con la cola llena el mensaje se descarta.
func (d *Dispatcher) Enqueue(msg notifier.Message) bool {
	select {
	case d.queue <- msg:
		return true
	default:
		notificationsTotal.WithLabelValues(msg.Kind, "dropped").Inc()
		d.log.Warn("notification queue full, dropping", map[string]any{"kind": msg.Kind})
		return false
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.started = true

	go d.run(runCtx)
}

// Stop corta el worker; lo que quedó en la cola se intenta entregar con un
// timeout acotado.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel = nil
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case msg := <-d.queue:
			d.deliver(ctx, msg)
		case <-ctx.Done():
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case msg := <-d.queue:
			d.deliver(ctx, msg)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg notifier.Message) {
	msg.To = d.recipients(ctx, msg)
	if len(msg.To) == 0 {
		notificationsTotal.WithLabelValues(msg.Kind, "skipped").Inc()
		d.log.Debug("notification without recipients", map[string]any{"kind": msg.Kind, "user_ids": msg.UserIDs})
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := d.sink.Send(sendCtx, msg); err != nil {
		notificationsTotal.WithLabelValues(msg.Kind, "failed").Inc()
		d.log.Error("notification delivery failed", map[string]any{"kind": msg.Kind, "error": err})
		return
	}
	notificationsTotal.WithLabelValues(msg.Kind, "sent").Inc()
}

// recipients une To con los emails de UserIDs, sin repetidos.
func (d *Dispatcher) recipients(ctx context.Context, msg notifier.Message) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(msg.To)+len(msg.UserIDs))
	add := func(addr string) {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			return
		}
		if _, dup := seen[strings.ToLower(addr)]; dup {
			return
		}
		seen[strings.ToLower(addr)] = struct{}{}
		out = append(out, addr)
	}

	for _, a := range msg.To {
		add(a)
	}
	if d.users != nil {
		for _, id := range msg.UserIDs {
			add(users.EmailOf(ctx, d.users, id))
		}
	}
	return out
}

var _ notifier.Queue = (*Dispatcher)(nil)
