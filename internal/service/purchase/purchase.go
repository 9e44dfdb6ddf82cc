package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/cart"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/credit"
	"github.com/Alijeyrad/drivingschool_backend/pkg/observability"
	"github.com/Alijeyrad/drivingschool_backend/pkg/payment"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CheckoutResult struct {
	Purchases        []model.Purchase `json:"purchases"`
	CreditsAdded     int              `json:"credits_added"`
	TotalAmount      int64            `json:"total_amount"`
	AvailableCredits int              `json:"available_credits"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Checkout settles the whole cart in one transaction.
	Checkout(ctx context.Context, studentID uuid.UUID) (*CheckoutResult, error)

	Start(ctx context.Context, studentID, planID uuid.UUID) (*model.Purchase, error)
	Pay(ctx context.Context, studentID, purchaseID uuid.UUID) (*model.Purchase, error)
	Complete(ctx context.Context, purchaseID uuid.UUID, paymentID string) (*model.Purchase, error)
	Fail(ctx context.Context, purchaseID uuid.UUID, reason string) error

	// ListForStudent returns purchases newest first. An empty status lists all.
	ListForStudent(ctx context.Context, studentID uuid.UUID, status model.PaymentStatus) ([]model.Purchase, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type purchaseService struct {
	db        *gorm.DB
	carts     cart.Service
	processor payment.Processor
	metrics   *observability.BookingMetrics
	logger    *slog.Logger
}

func New(db *gorm.DB, carts cart.Service, processor payment.Processor, metrics *observability.BookingMetrics, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &purchaseService{
		db:        db,
		carts:     carts,
		processor: processor,
		metrics:   metrics,
		logger:    logger.With("service", "purchase"),
	}
}

func (s *purchaseService) Checkout(ctx context.Context, studentID uuid.UUID) (*CheckoutResult, error) {
	var (
		out     CheckoutResult
		charged []string
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		view, err := s.carts.Load(tx, studentID)
		if err != nil {
			return err
		}
		if view.Count == 0 {
			return ErrEmptyCart
		}

		now := time.Now().UTC()
		for _, it := range view.Items {
			if it.Plan == nil {
				continue
			}
			payID, err := s.processor.Charge(ctx, payment.Charge{
				Reference:   it.ID.String(),
				Amount:      it.Plan.Price,
				Description: it.Plan.Name,
			})
			if err != nil {
				return ErrPaymentDeclined.Wrap(err)
			}
			charged = append(charged, payID)

			completed := now
			p := model.Purchase{
				StudentID:      studentID,
				PlanID:         it.PlanID,
				CreditsGranted: it.Plan.Hours,
				Amount:         it.Plan.Price,
				PaymentStatus:  model.PaymentCompleted,
				PaymentID:      payID,
				PurchasedAt:    now,
				CompletedAt:    &completed,
			}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("create purchase: %w", err)
			}
			p.Plan = it.Plan
			out.Purchases = append(out.Purchases, p)
			out.CreditsAdded += p.CreditsGranted
			out.TotalAmount += p.Amount
		}

		row, err := credit.Grant(tx, studentID, out.CreditsAdded, model.CreditPurchase, credit.Reference{Type: "cart", ID: view.CartID})
		if err != nil {
			return err
		}
		out.AvailableCredits = row.BalanceAvailableAfter

		return s.carts.Clear(tx, view.CartID)
	})
	if err != nil {
		s.refund(ctx, charged...)
		return nil, err
	}

	s.metrics.CreditsGranted(ctx, "checkout", out.CreditsAdded)
	s.logger.InfoContext(ctx, "cart settled",
		"student_id", studentID,
		"purchases", len(out.Purchases),
		"credits", out.CreditsAdded,
		"amount", out.TotalAmount,
	)
	return &out, nil
}

func (s *purchaseService) Start(ctx context.Context, studentID, planID uuid.UUID) (*model.Purchase, error) {
	var plan model.LessonPlan
	err := s.db.WithContext(ctx).First(&plan, "id = ? AND is_active = ?", planID, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}

	p := &model.Purchase{
		StudentID:      studentID,
		PlanID:         plan.ID,
		CreditsGranted: plan.Hours,
		Amount:         plan.Price,
		PaymentStatus:  model.PaymentPending,
		PurchasedAt:    time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}
	p.Plan = &plan
	return p, nil
}

func (s *purchaseService) Pay(ctx context.Context, studentID, purchaseID uuid.UUID) (*model.Purchase, error) {
	var p model.Purchase
	err := s.db.WithContext(ctx).Preload("Plan").
		First(&p, "id = ? AND student_id = ?", purchaseID, studentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPurchaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	if p.PaymentStatus != model.PaymentPending {
		return nil, ErrAlreadySettled
	}

	desc := ""
	if p.Plan != nil {
		desc = p.Plan.Name
	}
	payID, err := s.processor.Charge(ctx, payment.Charge{Reference: p.ID.String(), Amount: p.Amount, Description: desc})
	if err != nil {
		if ferr := s.Fail(ctx, p.ID, err.Error()); ferr != nil {
			s.logger.ErrorContext(ctx, "mark purchase failed", "purchase_id", p.ID, "error", ferr)
		}
		return nil, ErrPaymentDeclined.Wrap(err)
	}
	done, err := s.Complete(ctx, p.ID, payID)
	if err != nil {
		s.refund(ctx, payID)
		return nil, err
	}
	return done, nil
}

// refund returns charges whose purchases were never recorded. Failures are
// logged for manual follow-up; the caller's error is what the student sees.
func (s *purchaseService) refund(ctx context.Context, paymentIDs ...string) {
	ctx = context.WithoutCancel(ctx)
	for _, id := range paymentIDs {
		if err := s.processor.Refund(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "refund failed", "payment_id", id, "error", err)
			continue
		}
		s.logger.WarnContext(ctx, "charge refunded", "payment_id", id)
	}
}

// Complete moves a pending purchase to completed and grants its credits. Only
// the caller whose update changed the row grants credits.
func (s *purchaseService) Complete(ctx context.Context, purchaseID uuid.UUID, paymentID string) (*model.Purchase, error) {
	var p model.Purchase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&model.Purchase{}).
			Where("id = ? AND payment_status = ?", purchaseID, model.PaymentPending).
			Updates(map[string]any{
				"payment_status": model.PaymentCompleted,
				"payment_id":     paymentID,
				"completed_at":   now,
			})
		if res.Error != nil {
			return fmt.Errorf("complete purchase: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return s.settledOrMissing(tx, purchaseID)
		}

		if err := tx.Preload("Plan").First(&p, "id = ?", purchaseID).Error; err != nil {
			return fmt.Errorf("reload purchase: %w", err)
		}
		_, err := credit.Grant(tx, p.StudentID, p.CreditsGranted, model.CreditPurchase, credit.Reference{Type: "purchase", ID: p.ID})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CreditsGranted(ctx, "purchase", p.CreditsGranted)
	s.logger.InfoContext(ctx, "purchase completed", "purchase_id", p.ID, "student_id", p.StudentID, "credits", p.CreditsGranted)
	return &p, nil
}

func (s *purchaseService) Fail(ctx context.Context, purchaseID uuid.UUID, reason string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Purchase{}).
			Where("id = ? AND payment_status = ?", purchaseID, model.PaymentPending).
			Updates(map[string]any{
				"payment_status": model.PaymentFailed,
				"failure_reason": reason,
			})
		if res.Error != nil {
			return fmt.Errorf("fail purchase: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return s.settledOrMissing(tx, purchaseID)
		}
		return nil
	})
}

func (s *purchaseService) ListForStudent(ctx context.Context, studentID uuid.UUID, status model.PaymentStatus) ([]model.Purchase, error) {
	q := s.db.WithContext(ctx).Preload("Plan").
		Where("student_id = ?", studentID).
		Order("purchased_at DESC")

	switch status {
	case "":
	case model.PaymentPending, model.PaymentCompleted, model.PaymentFailed:
		q = q.Where("payment_status = ?", status)
	default:
		return nil, ErrInvalidStatus
	}

	var out []model.Purchase
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return out, nil
}

func (s *purchaseService) settledOrMissing(tx *gorm.DB, purchaseID uuid.UUID) error {
	var n int64
	if err := tx.Model(&model.Purchase{}).Where("id = ?", purchaseID).Count(&n).Error; err != nil {
		return fmt.Errorf("check purchase: %w", err)
	}
	if n == 0 {
		return ErrPurchaseNotFound
	}
	return ErrAlreadySettled
}
