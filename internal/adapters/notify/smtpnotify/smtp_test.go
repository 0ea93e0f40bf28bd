package smtpnotify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"adoptipet/internal/ports/notifier"
)

func TestNotifier_Send(t *testing.T) {
	n, err := New(Config{Host: "mail.local", Port: 2525, From: "no-reply@adoptipet.local"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	n.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	err = n.Send(context.Background(), notifier.Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Adopción completada",
		Body:    "line1\nline2",
		Kind:    "adoption_completed",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "mail.local:2525" || len(gotTo) != 2 {
		t.Fatalf("unexpected envelope %s %v", gotAddr, gotTo)
	}
	for _, want := range []string{
		"To: a@example.com, b@example.com\r\n",
		"Subject: =?utf-8?q?",
		"X-AdoptiPet-Kind: adoption_completed\r\n",
		"\r\n\r\nline1\r\nline2\r\n",
	} {
		if !strings.Contains(gotMsg, want) {
			t.Fatalf("message missing %q:\n%s", want, gotMsg)
		}
	}
}

func TestNotifier_Errors(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error without host")
	}

	n, _ := New(Config{Host: "mail.local"})
	n.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	if err := n.Send(context.Background(), notifier.Message{To: []string{"a@example.com"}}); err == nil {
		t.Fatalf("expected send error")
	}
	if err := n.Send(context.Background(), notifier.Message{}); err == nil {
		t.Fatalf("expected error without recipients")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Send(ctx, notifier.Message{To: []string{"a@example.com"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
