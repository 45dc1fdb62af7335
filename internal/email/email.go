// Package email sends admin notifications over SMTP.
package email

import "context"

// Email represents an email message to be sent.
type Email struct {
	To       []string // Recipient email addresses
	From     string   // Sender email address
	FromName string   // Sender display name (optional)
	Subject  string
	TextBody string
	HTMLBody string // optional
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}
