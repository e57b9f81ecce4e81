package services

import (
	"context"
	"fmt"
	"log"

	"doctags/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendWelcomeMessage sends a welcome email using the "welcome" template and the given data.
func (s *emailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if data == nil {
		return fmt.Errorf("welcome message data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("welcome", data)
	if err != nil {
		return fmt.Errorf("failed to render welcome template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	log.Printf("[EMAIL] Welcome email sent to %s", data.Email)
	return nil
}

// SendTagAdded sends the tag subscription notification using the "tag_added" template.
func (s *emailService) SendTagAdded(ctx context.Context, data *domain.TagAddedEmailData) error {
	if data == nil {
		return fmt.Errorf("tag added email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("tag_added", data)
	if err != nil {
		return fmt.Errorf("failed to render tag_added template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send tag_added email: %w", err)
	}
	log.Printf("[EMAIL] Tag notification sent to %s for %q", data.Email, data.Tag)
	return nil
}
