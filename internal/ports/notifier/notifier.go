package notifier

import "context"

// Message es un email (o equivalente) ya renderizado.
type Message struct {
	// To son direcciones ya resueltas; UserIDs se resuelven en el dispatcher.
	To      []string `json:"to"`
	UserIDs []string `json:"user_ids,omitempty"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	// Kind identifica la plantilla: application_received, adoption_completed, etc.
	Kind string `json:"kind"`
}

// Notifier entrega un mensaje (log, smtp, nats).
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Queue es lo que ven los servicios de dominio: encolar sin bloquear.
// Devuelve false si el mensaje se descartó.
type Queue interface {
	Enqueue(msg Message) bool
}

// Discard es una Queue que no hace nada (tests, CLI).
type Discard struct{}

func (Discard) Enqueue(Message) bool { return true }
