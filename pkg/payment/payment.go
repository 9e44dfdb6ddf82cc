// Package payment defines the processor boundary used when a student pays for
// a lesson plan.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Alijeyrad/drivingschool_backend/config"
	"github.com/Alijeyrad/drivingschool_backend/pkg/util/codes"
)

var (
	ErrDeclined        = errors.New("payment: declined")
	ErrInvalidAmount   = errors.New("payment: amount must not be negative")
	ErrUnknownProvider = errors.New("payment: unknown provider")
	ErrUnknownPayment  = errors.New("payment: unknown payment id")
)

// Charge describes one payment attempt. Amount is in cents.
type Charge struct {
	Reference   string
	Amount      int64
	Description string
}

type Processor interface {
	// Charge returns the processor's payment id on success.
	Charge(ctx context.Context, ch Charge) (string, error)
	// Refund returns a captured charge in full. Used when the purchase
	// that caused the charge could not be recorded.
	Refund(ctx context.Context, paymentID string) error
}

// DummyProcessor approves every non-negative charge and returns ids of the
// form PAY_nnnnnn.
type DummyProcessor struct{}

var _ Processor = DummyProcessor{}

func (DummyProcessor) Charge(ctx context.Context, ch Charge) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ch.Amount < 0 {
		return "", ErrInvalidAmount
	}
	digits, err := codes.GenerateNumericCode(6)
	if err != nil {
		return "", fmt.Errorf("payment: generate id: %w", err)
	}
	return "PAY_" + digits, nil
}

func (DummyProcessor) Refund(ctx context.Context, paymentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.HasPrefix(paymentID, "PAY_") {
		return fmt.Errorf("%w: %q", ErrUnknownPayment, paymentID)
	}
	return nil
}

func NewFromConfig(cfg config.PaymentConfig) (Processor, error) {
	switch cfg.Provider {
	case "", "dummy":
		return DummyProcessor{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
