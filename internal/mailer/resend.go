// Package mailer sends transactional email through Resend.
package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Resend delivers mail via the Resend API.
type Resend struct {
	client *resend.Client
	from   string
}

// New builds a Resend mailer. Returns nil when no API key is configured so
// callers can treat email as optional.
func New(apiKey, from string) *Resend {
	if apiKey == "" {
		return nil
	}
	return &Resend{client: resend.NewClient(apiKey), from: from}
}

// SendCredentials mails a freshly created account its login credentials.
func (r *Resend) SendCredentials(ctx context.Context, to, username, password string) error {
	html := fmt.Sprintf(
		`<h2>Welcome to TestMatrix!</h2>
<p>Your account is ready. Sign in with:</p>
<p><b>Username:</b> %s<br><b>Password:</b> %s</p>
<p>Please change your password after your first login.</p>`,
		username, password,
	)

	_, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{to},
		Subject: "Welcome to TestMatrix!",
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("sending credential email: %w", err)
	}
	return nil
}
