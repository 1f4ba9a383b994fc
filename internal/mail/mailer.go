// Package mail sends the contact-form notification through a configurable
// transport.
package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/portfolio-site/portfolio-api/internal/config"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
)

// Message is a single outgoing email.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers messages. Implementations must honour ctx cancellation
// or their own timeout; Send never blocks indefinitely.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// New selects the transport named by cfg.Driver.
func New(cfg config.MailConfig) (Mailer, error) {
	switch cfg.Driver {
	case "smtp":
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.Timeout), nil
	case "resend":
		return NewResendMailer(cfg.ResendAPIKey, cfg.ResendURL, cfg.Timeout), nil
	case "log", "":
		return LogMailer{}, nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}

// Verify logs whether the selected transport can be used. It never fails
// startup: a broken transport only degrades contact notifications.
func Verify(m Mailer, cfg config.MailConfig) bool {
	if _, ok := m.(LogMailer); ok {
		logger.Warnf("mail: no transport configured, contact notifications are logged only")
		return false
	}
	if cfg.From == "" || cfg.To == "" {
		logger.Warnf("mail: %s transport configured but MAIL_FROM/MAIL_TO missing", m.Name())
		return false
	}
	logger.Infof("mail: %s transport configured", m.Name())
	return true
}

// Instrumented counts sends per provider and outcome.
type Instrumented struct {
	Mailer
}

func (i Instrumented) Send(ctx context.Context, msg Message) error {
	err := i.Mailer.Send(ctx, msg)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.MailSent.WithLabelValues(i.Name(), outcome).Inc()
	return err
}

// headerValue strips line breaks so user input cannot inject headers.
func headerValue(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
