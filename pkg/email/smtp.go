package email

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/Alijeyrad/drivingschool_backend/config"
)

const (
	defaultSMTPPort    = 587
	defaultSMTPTimeout = 30 * time.Second
)

// SMTP sends mail through a single relay with gomail.
type SMTP struct {
	enabled bool
	from    string
	admin   string
	host    string
	timeout time.Duration
	deliver func(...*gomail.Message) error
}

var _ Sender = (*SMTP)(nil)

func NewSMTP(cfg config.EmailConfig) (*SMTP, error) {
	s := &SMTP{
		enabled: cfg.Enabled,
		from:    strings.TrimSpace(cfg.From),
		admin:   strings.TrimSpace(cfg.AdminEmail),
		host:    strings.TrimSpace(cfg.SMTP.Host),
		timeout: defaultSMTPTimeout,
	}
	if cfg.SMTP.TimeoutSeconds > 0 {
		s.timeout = time.Duration(cfg.SMTP.TimeoutSeconds) * time.Second
	}
	if !s.enabled {
		return s, nil
	}
	if s.host == "" {
		return nil, InvalidMessageError{Field: "smtp host"}
	}
	if s.from == "" {
		return nil, InvalidMessageError{Field: "sender address"}
	}

	port := cfg.SMTP.Port
	if port == 0 {
		port = defaultSMTPPort
	}
	d := gomail.NewDialer(s.host, port, cfg.SMTP.Username, cfg.SMTP.Password)
	if cfg.SMTP.UseTLS {
		d.SSL = true
		d.TLSConfig = &tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}
	}
	s.deliver = d.DialAndSend
	return s, nil
}

func (s *SMTP) Enabled() bool        { return s.enabled }
func (s *SMTP) AdminAddress() string { return s.admin }

// Send blocks until the relay accepts the message, ctx ends, or the
// configured SMTP timeout passes, whichever is first. gomail has no
// context support so a timed-out dial keeps running in the background.
func (s *SMTP) Send(ctx context.Context, m Message) error {
	if !s.enabled {
		return ErrDisabled
	}
	msg, err := s.compose(m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.deliver(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return DeliveryError{Host: s.host, Err: err}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SMTP) compose(m Message) (*gomail.Message, error) {
	m, err := m.normalized()
	if err != nil {
		return nil, err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To...)
	msg.SetHeader("Subject", m.Subject)
	if m.ReplyTo != "" {
		msg.SetHeader("Reply-To", m.ReplyTo)
	}
	if len(m.CC) > 0 {
		msg.SetHeader("Cc", m.CC...)
	}
	if len(m.BCC) > 0 {
		msg.SetHeader("Bcc", m.BCC...)
	}
	for k, v := range m.Headers {
		if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
			msg.SetHeader(k, v)
		}
	}

	if strings.TrimSpace(m.TextBody) != "" {
		msg.SetBody("text/plain", m.TextBody)
		if strings.TrimSpace(m.HTMLBody) != "" {
			msg.AddAlternative("text/html", m.HTMLBody)
		}
	} else {
		msg.SetBody("text/html", m.HTMLBody)
	}
	return msg, nil
}
