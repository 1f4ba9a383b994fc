package mail

import (
	"context"
	"strings"

	"github.com/portfolio-site/portfolio-api/pkg/logger"
)

// LogMailer only logs the envelope. Used when no transport is configured.
type LogMailer struct{}

func (LogMailer) Name() string { return "log" }

func (LogMailer) Send(ctx context.Context, msg Message) error {
	logger.Infow("mail not sent, no transport configured",
		"to", strings.Join(msg.To, ","),
		"replyTo", msg.ReplyTo,
		"subject", headerValue(msg.Subject),
	)
	return nil
}
