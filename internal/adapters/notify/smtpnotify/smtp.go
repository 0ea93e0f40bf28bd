// Package smtpnotify manda las notificaciones como email de texto plano.
package smtpnotify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"adoptipet/internal/ports/notifier"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// sendFunc es smtp.SendMail; se reemplaza en tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Notifier struct {
	addr string
	auth smtp.Auth
	from string
	send sendFunc
	now  func() time.Time
}

func New(cfg Config) (*Notifier, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp host required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	var a smtp.Auth
	if cfg.User != "" {
		a = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	return &Notifier{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth: a,
		from: cfg.From,
		send: smtp.SendMail,
		now:  time.Now,
	}, nil
}

// Send no acepta contexto en net/smtp; si ctx ya está cancelado no se intenta.
func (n *Notifier) Send(ctx context.Context, msg notifier.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return errors.New("smtp: no recipients")
	}
	if err := n.send(n.addr, n.auth, n.from, msg.To, n.render(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (n *Notifier) render(msg notifier.Message) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", n.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", n.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	if msg.Kind != "" {
		fmt.Fprintf(&b, "X-AdoptiPet-Kind: %s\r\n", msg.Kind)
	}
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}

var _ notifier.Notifier = (*Notifier)(nil)
