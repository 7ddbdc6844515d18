package notification

import (
	"context"

	"gopkg.in/gomail.v2"

	"github.com/gorider/gorider-api/pkg/logger"
)

// SMTPConfig holds mail relay credentials
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers through a mail relay, one connection per message
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates a relay sender
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return s.dialer.DialAndSend(m)
}

// LogSender writes messages to the log instead of a relay. Used when no
// relay is configured.
type LogSender struct {
	logger *logger.Logger
}

// NewLogSender creates a log-only sender
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{logger: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("Mail relay not configured, message logged",
		logger.String("to", msg.To),
		logger.String("subject", msg.Subject),
	)
	return nil
}
