package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrNotConfigured is returned when no SendGrid API key is present.
var ErrNotConfigured = errors.New("email delivery is not configured")

// Message is a rendered transactional email.
type Message struct {
	Template string
	To       string
	ToName   string
	Subject  string
	HTML     string
	Text     string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendgridMailer struct {
	client  sendClient
	from    *mail.Email
	logg    *logger.Logger
	metrics *metrics.EmailMetrics
}

type noopMailer struct {
	logg    *logger.Logger
	metrics *metrics.EmailMetrics
}

// New returns a SendGrid backed mailer, or a logging no-op when the API key is absent.
func New(cfg config.SendgridConfig, logg *logger.Logger, m *metrics.EmailMetrics) Mailer {
	if !cfg.Enabled() {
		return noopMailer{logg: logg, metrics: m}
	}
	return &sendgridMailer{
		client:  sendgrid.NewSendClient(cfg.APIKey),
		from:    mail.NewEmail(cfg.FromName, cfg.DefaultFrom),
		logg:    logg,
		metrics: m,
	}
}

func (s *sendgridMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	to := mail.NewEmail(msg.ToName, msg.To)
	payload := mail.NewSingleEmail(s.from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := s.client.SendWithContext(ctx, payload)
	if err != nil {
		s.metrics.ObserveSend(msg.Template, metrics.ResultError)
		return fmt.Errorf("sendgrid send %s: %w", msg.Template, err)
	}
	if resp.StatusCode >= 300 {
		s.metrics.ObserveSend(msg.Template, metrics.ResultError)
		return fmt.Errorf("sendgrid send %s: status %d: %s", msg.Template, resp.StatusCode, strings.TrimSpace(resp.Body))
	}
	s.metrics.ObserveSend(msg.Template, metrics.ResultSuccess)
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"template": msg.Template, "to": msg.To})
		s.logg.Info(ctx, "email.sent")
	}
	return nil
}

func (n noopMailer) Send(ctx context.Context, msg Message) error {
	n.metrics.ObserveSend(msg.Template, "skipped")
	if n.logg != nil {
		ctx = n.logg.WithField(ctx, "template", msg.Template)
		n.logg.Debug(ctx, "email.skipped")
	}
	return ErrNotConfigured
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("email recipient is required")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("email subject is required")
	}
	return nil
}
