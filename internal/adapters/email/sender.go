package email

import (
	"context"
	"fmt"
	"html"
)

// Message is a single outbound transactional email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers transactional email through an external provider.
type Sender interface {
	// Send delivers msg and returns the provider's message ID.
	Send(ctx context.Context, msg Message) (string, error)
}

// ActivationMessage builds the notice sent when a cliente account becomes activo.
// PRE: to is a normalised email address
// POST: name is HTML-escaped in the body
func ActivationMessage(name, to, loginURL string) Message {
	body := fmt.Sprintf(
		"<p>Hola %s,</p><p>Tu cuenta ya está activa. Ya puedes registrar tus medidas y ver tus planes.</p>",
		html.EscapeString(name),
	)
	if loginURL != "" {
		body += fmt.Sprintf(`<p><a href="%s">Entrar</a></p>`, html.EscapeString(loginURL))
	}
	return Message{
		To:      to,
		Subject: "Tu cuenta está activa",
		HTML:    body,
	}
}
