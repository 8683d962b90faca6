package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/providers"
	"github.com/nagoyameshi/backend/internal/infrastructure/observability"
	"github.com/nagoyameshi/backend/pkg/config"
)

// Dialer delivers composed messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends email through an SMTP relay
type SMTPSender struct {
	from   string
	dialer Dialer
}

var _ providers.EmailSender = (*SMTPSender)(nil)

// NewSMTPSender creates a sender from SMTP configuration
func NewSMTPSender(cfg *config.EmailConfig) *SMTPSender {
	return NewSMTPSenderWithDialer(cfg.From, gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword))
}

// NewSMTPSenderWithDialer creates a sender with a custom dialer
func NewSMTPSenderWithDialer(from string, dialer Dialer) *SMTPSender {
	return &SMTPSender{from: from, dialer: dialer}
}

// Send composes and delivers one message
func (s *SMTPSender) Send(ctx context.Context, msg *entities.EmailMessage) error {
	m, err := s.compose(msg)
	if err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	observability.LoggerFromContext(ctx).Debug().Strs("to", msg.To).Str("subject", msg.Subject).Msg("email sent")
	return nil
}

func (s *SMTPSender) compose(msg *entities.EmailMessage) (*gomail.Message, error) {
	recipients := make([]string, 0, len(msg.To))
	for _, to := range msg.To {
		if to = strings.TrimSpace(to); to != "" {
			recipients = append(recipients, to)
		}
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("email has no recipients")
	}

	from := msg.From
	if from == "" {
		from = s.from
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.TextBody)
	}
	return m, nil
}

// LogSender writes emails to the log instead of sending them; used when SMTP is not configured
type LogSender struct{}

var _ providers.EmailSender = LogSender{}

// Send logs the message
func (LogSender) Send(ctx context.Context, msg *entities.EmailMessage) error {
	log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Str("body", msg.TextBody).Msg("email delivery disabled, logging message")
	return nil
}
