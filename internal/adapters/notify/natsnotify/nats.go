// Package natsnotify publica cada notificación como JSON en un subject NATS;
// un mailer externo la consume.
package natsnotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"adoptipet/internal/ports/notifier"

	"github.com/nats-io/nats.go"
)

// Publisher es la parte de *nats.Conn que usamos.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type Notifier struct {
	pub     Publisher
	subject string
	now     func() time.Time
}

// Connect abre la conexión con reintentos (mismo esquema que el resto de los servicios).
func Connect(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return nc, nil
}

func New(pub Publisher, subject string) (*Notifier, error) {
	if pub == nil {
		return nil, errors.New("nats publisher required")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, errors.New("nats subject required")
	}
	return &Notifier{pub: pub, subject: subject, now: time.Now}, nil
}

type envelope struct {
	notifier.Message
	SentAt time.Time `json:"sent_at"`
}

// Send publica en <subject>.<kind> para que el consumidor pueda filtrar por tipo.
func (n *Notifier) Send(ctx context.Context, msg notifier.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(envelope{Message: msg, SentAt: n.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	subject := n.subject
	if msg.Kind != "" {
		subject += "." + msg.Kind
	}
	if err := n.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

var (
	_ notifier.Notifier = (*Notifier)(nil)
	_ Publisher         = (*nats.Conn)(nil)
)
