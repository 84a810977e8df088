package notifier

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/tair/membership-platform/pkg/logger"
)

// Notifier delivers confirmation messages to a recipient.
// Implementations exist for SMTP delivery and console output (local dev).
type Notifier interface {
	Notify(to, subject, body string) error
}

// ConsoleNotifier logs messages instead of sending them
type ConsoleNotifier struct{}

func NewConsole() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (c *ConsoleNotifier) Notify(to, subject, body string) error {
	logger.Logger.Info().
		Str("to", to).
		Str("subject", subject).
		Msg(body)
	return nil
}

// SMTPNotifier sends mail through a plain SMTP relay
type SMTPNotifier struct {
	Addr string // host:port
	From string
	Auth smtp.Auth
}

func NewSMTP(addr, from, username, password string) *SMTPNotifier {
	var auth smtp.Auth
	if username != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPNotifier{Addr: addr, From: from, Auth: auth}
}

func (s *SMTPNotifier) Notify(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.From, to, subject, body)
	if err := smtp.SendMail(s.Addr, s.Auth, s.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
