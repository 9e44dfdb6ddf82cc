package sms

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Alijeyrad/drivingschool_backend/config"
	"github.com/arsmn/go-smsir/smsir"
)

// Notice names an sms.ir template configured for a lesson event.
type Notice string

const (
	NoticeLessonBooked      Notice = "lesson_booked"
	NoticeLessonCancelled   Notice = "lesson_cancelled"
	NoticeLessonRescheduled Notice = "lesson_rescheduled"
)

var ErrNoTemplate = errors.New("sms template not configured")

// Sender is what the notification service needs from an SMS provider.
type Sender interface {
	SendNotice(ctx context.Context, phoneNumber string, notice Notice, params map[string]string) error
	IsEnabled() bool
}

// Client provides SMS sending functionality via sms.ir.
type Client struct {
	client    *smsir.Client
	enabled   bool
	templates map[Notice]string
}

var _ Sender = (*Client)(nil)

// NewFromConfig creates a new SMS client from the application configuration.
// If SMS is disabled, returns a client that no-ops on all operations.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}

	return &Client{
		client:  smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey),
		enabled: true,
		templates: map[Notice]string{
			NoticeLessonBooked:      cfg.SMSIR.BookedTemplateID,
			NoticeLessonCancelled:   cfg.SMSIR.CancelledTemplateID,
			NoticeLessonRescheduled: cfg.SMSIR.MovedTemplateID,
		},
	}, nil
}

// SendNotice sends the template bound to notice with params as template parameters.
// If SMS is disabled, this is a no-op and returns nil.
func (c *Client) SendNotice(ctx context.Context, phoneNumber string, notice Notice, params map[string]string) error {
	if !c.enabled {
		return nil
	}

	if phoneNumber == "" {
		return fmt.Errorf("phone number is required")
	}
	templateID := c.templates[notice]
	if templateID == "" {
		return fmt.Errorf("%w: %s", ErrNoTemplate, notice)
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     phoneNumber,
		TemplateID: templateID,
		Parameters: templateParams(params),
	}

	if _, err := c.client.Verification.UltraFastSend(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}
	return nil
}

func templateParams(params map[string]string) []smsir.UltraFastParameter {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]smsir.UltraFastParameter, 0, len(keys))
	for _, k := range keys {
		out = append(out, smsir.UltraFastParameter{Key: k, Value: params[k]})
	}
	return out
}

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}
