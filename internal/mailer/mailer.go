// Package mailer sends outbound email. The production implementation
// delivers through Resend; when no API key is configured mail is
// logged and dropped so the rest of the system keeps working.
package mailer

import (
	"context"
	"log"

	"github.com/resend/resend-go/v3"
)

// A Message is one outbound email.
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// A Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// Resend delivers mail through the Resend API.
type Resend struct {
	client *resend.Client
	from   string
}

func NewResend(apiKey, from string) *Resend {
	return &Resend{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (r *Resend) Send(ctx context.Context, msg *Message) error {
	_, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    r.from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
	})
	return err
}

// Discard logs and drops mail. Used when no mail provider is configured.
type Discard struct{}

func (Discard) Send(ctx context.Context, msg *Message) error {
	log.Printf("mailer: discarding %q to %v (no mail provider configured)", msg.Subject, msg.To)
	return nil
}
