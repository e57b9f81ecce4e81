package domain

import "context"

// Mailer defines the contract for sending a single email message
// (infrastructure port). Implementations must honor ctx cancellation.
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeMessageEmailData holds data for the welcome email.
type WelcomeMessageEmailData struct {
	Email    string
	Name     string
	UserID   string // optional, for future use
	Language string // optional, for future locale/templates
}

// TagAddedEmailData holds data for the tag subscription notification email,
// sent to subscribers of a tag when that tag lands on a document.
type TagAddedEmailData struct {
	Email         string
	Tag           string
	DocumentID    string
	DocumentTitle string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcomeMessage(ctx context.Context, data *WelcomeMessageEmailData) error
	SendTagAdded(ctx context.Context, data *TagAddedEmailData) error
}
