package service

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/google/uuid"

	"github.com/a-bjn/sudexpert-storefront/internal/notifier/domain"
	"github.com/a-bjn/sudexpert-storefront/internal/notifier/event"
	"github.com/a-bjn/sudexpert-storefront/internal/notifier/repository"
	"github.com/a-bjn/sudexpert-storefront/internal/notifier/sender"
	apperrors "github.com/a-bjn/sudexpert-storefront/pkg/errors"
)

// DefaultHourlyLimit is the per-IP submission cap when none is configured.
const DefaultHourlyLimit = 10

// rateWindow is the fixed window the per-IP cap is counted over.
const rateWindow = time.Hour

// SubmitInput holds the contact form fields.
type SubmitInput struct {
	Token   string `json:"token" validate:"required,max=100"`
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=30"`
	Message string `json:"message" validate:"required,max=5000"`
}

// NotifierService validates contact submissions, caps them per client IP,
// records them, and forwards them by email to the sales inbox.
type NotifierService struct {
	repo        repository.SubmissionRepository
	sender      sender.Sender
	producer    *event.Producer
	logger      *slog.Logger
	recipients  []string
	hourlyLimit int
	now         func() time.Time
}

// NewNotifierService creates a new notifier service. A non-positive
// hourlyLimit falls back to DefaultHourlyLimit.
func NewNotifierService(
	repo repository.SubmissionRepository,
	snd sender.Sender,
	producer *event.Producer,
	logger *slog.Logger,
	recipients []string,
	hourlyLimit int,
) *NotifierService {
	if hourlyLimit <= 0 {
		hourlyLimit = DefaultHourlyLimit
	}
	return &NotifierService{
		repo:        repo,
		sender:      snd,
		producer:    producer,
		logger:      logger,
		recipients:  recipients,
		hourlyLimit: hourlyLimit,
		now:         time.Now,
	}
}

// Submit processes one contact-form entry from the given client IP.
func (s *NotifierService) Submit(ctx context.Context, clientIP string, input SubmitInput) error {
	if clientIP == "" {
		return apperrors.InvalidInput("client ip is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.InvalidInput("name is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return apperrors.InvalidInput("email is required")
	}
	if strings.TrimSpace(input.Message) == "" {
		return apperrors.InvalidInput("message is required")
	}

	since := s.now().Add(-rateWindow)
	count, err := s.repo.CountByIPSince(ctx, clientIP, since)
	if err != nil {
		return fmt.Errorf("count recent submissions: %w", err)
	}
	if count >= s.hourlyLimit {
		s.logger.WarnContext(ctx, "submission rate cap hit",
			slog.String("client_ip", clientIP),
			slog.Int("count", count),
		)
		return apperrors.RateLimited("too many submissions, try again later")
	}

	submission := &domain.Submission{
		ID:        uuid.New().String(),
		Token:     input.Token,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Message:   input.Message,
		ClientIP:  clientIP,
		Status:    domain.SubmissionStatusPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		return fmt.Errorf("record submission: %w", err)
	}

	email, err := renderEmail(s.recipients, submission)
	if err != nil {
		s.markFailed(ctx, submission.ID)
		return fmt.Errorf("render email: %w", err)
	}

	if err := s.sender.Send(ctx, email); err != nil {
		s.markFailed(ctx, submission.ID)
		return fmt.Errorf("send email: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, submission.ID, domain.SubmissionStatusSent); err != nil {
		s.logger.ErrorContext(ctx, "failed to mark submission sent",
			slog.String("submission_id", submission.ID),
			slog.String("error", err.Error()),
		)
	}

	if s.producer != nil {
		if err := s.producer.PublishContactSubmitted(ctx, event.ContactSubmittedData{
			SubmissionID: submission.ID,
			Email:        submission.Email,
			Status:       domain.SubmissionStatusSent,
		}); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish contact.submitted event",
				slog.String("submission_id", submission.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "contact submission forwarded",
		slog.String("submission_id", submission.ID),
		slog.String("sender", s.sender.Name()),
	)

	return nil
}

func (s *NotifierService) markFailed(ctx context.Context, id string) {
	if err := s.repo.UpdateStatus(ctx, id, domain.SubmissionStatusFailed); err != nil {
		s.logger.ErrorContext(ctx, "failed to mark submission failed",
			slog.String("submission_id", id),
			slog.String("error", err.Error()),
		)
	}
}

var textTmpl = texttemplate.Must(texttemplate.New("contact").Parse(
	`New contact request ({{.Token}})

Name: {{.Name}}
Email: {{.Email}}
Phone: {{.Phone}}

{{.Message}}
`))

var htmlTmpl = htmltemplate.Must(htmltemplate.New("contact").Parse(
	`<h2>New contact request ({{.Token}})</h2>
<p><strong>Name:</strong> {{.Name}}<br>
<strong>Email:</strong> {{.Email}}<br>
<strong>Phone:</strong> {{.Phone}}</p>
<p>{{.Message}}</p>
`))

func renderEmail(recipients []string, s *domain.Submission) (*sender.Email, error) {
	var text, html bytes.Buffer
	if err := textTmpl.Execute(&text, s); err != nil {
		return nil, fmt.Errorf("execute text template: %w", err)
	}
	if err := htmlTmpl.Execute(&html, s); err != nil {
		return nil, fmt.Errorf("execute html template: %w", err)
	}

	return &sender.Email{
		To:       recipients,
		Subject:  fmt.Sprintf("Contact request from %s", s.Name),
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
