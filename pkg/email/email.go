// Package email sends the school's transactional mail: lesson
// confirmations to students and contact/careers forwards to the office.
package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const DefaultSchoolName = "Success Driving School"

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, m Message) error
	Enabled() bool
	// AdminAddress is the office inbox; empty when forwarding is off.
	AdminAddress() string
}

var ErrDisabled = errors.New("email: sending is disabled")

// InvalidMessageError names the field that made a message unsendable.
type InvalidMessageError struct{ Field string }

func (e InvalidMessageError) Error() string { return "email: message has no " + e.Field }

// DeliveryError wraps a transport failure.
type DeliveryError struct {
	Host string
	Err  error
}

func (e DeliveryError) Error() string { return fmt.Sprintf("email: deliver via %s: %v", e.Host, e.Err) }
func (e DeliveryError) Unwrap() error { return e.Err }

type Message struct {
	To       []string
	CC       []string
	BCC      []string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
	Headers  map[string]string
}

// normalized trims every address and drops blanks, then checks that the
// message has somewhere to go and something to say.
func (m Message) normalized() (Message, error) {
	m.To = compact(m.To)
	m.CC = compact(m.CC)
	m.BCC = compact(m.BCC)
	m.ReplyTo = strings.TrimSpace(m.ReplyTo)
	m.Subject = strings.TrimSpace(m.Subject)

	switch {
	case len(m.To) == 0:
		return m, InvalidMessageError{Field: "recipient"}
	case m.Subject == "":
		return m, InvalidMessageError{Field: "subject"}
	case strings.TrimSpace(m.TextBody) == "" && strings.TrimSpace(m.HTMLBody) == "":
		return m, InvalidMessageError{Field: "body"}
	}
	return m, nil
}

func compact(addrs []string) []string {
	out := addrs[:0:0]
	for _, a := range addrs {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
