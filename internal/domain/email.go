package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// PrincipalDirectory resolves a principal id to a contact address. Backed by
// the external user system; the core never stores contact details itself.
type PrincipalDirectory interface {
	EmailFor(ctx context.Context, principalID string) (string, error)
}

// PromotionEmailData holds data for the waitlist-promotion email.
type PromotionEmailData struct {
	EventTitle string
	StartsAt   string
}
