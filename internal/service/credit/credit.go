// Package credit changes student lesson balances and records each change in
// the credit ledger. Every function runs on a caller's transaction.
package credit

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/internal/apperr"
	"github.com/Alijeyrad/drivingschool_backend/internal/model"
)

var (
	ErrInsufficientCredits = apperr.PolicyViolation("no lesson credits available; purchase a plan first")
	ErrStudentNotFound     = apperr.NotFound("student not found")
	ErrInvalidAmount       = apperr.Validation("credit amount must be positive")
)

// Reference ties a ledger row to the record that caused it.
type Reference struct {
	Type string
	ID   uuid.UUID
}

// Grant adds n to both available and total credits.
func Grant(tx *gorm.DB, studentID uuid.UUID, n int, kind model.CreditKind, ref Reference) (*model.CreditTransaction, error) {
	if n <= 0 {
		return nil, ErrInvalidAmount
	}
	res := tx.Model(&model.Student{}).
		Where("id = ?", studentID).
		Updates(map[string]any{
			"available_credits": gorm.Expr("available_credits + ?", n),
			"total_credits":     gorm.Expr("total_credits + ?", n),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("grant credits: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrStudentNotFound
	}
	return record(tx, studentID, kind, n, n, ref)
}

// Consume takes n available credits. It fails with ErrInsufficientCredits
// without touching the row when the balance is too low.
func Consume(tx *gorm.DB, studentID uuid.UUID, n int, ref Reference) (*model.CreditTransaction, error) {
	if n <= 0 {
		return nil, ErrInvalidAmount
	}
	res := tx.Model(&model.Student{}).
		Where("id = ? AND available_credits >= ?", studentID, n).
		Update("available_credits", gorm.Expr("available_credits - ?", n))
	if res.Error != nil {
		return nil, fmt.Errorf("consume credits: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := Balance(tx, studentID); err != nil {
			return nil, err
		}
		return nil, ErrInsufficientCredits
	}
	return record(tx, studentID, model.CreditBooking, -n, 0, ref)
}

// Balance returns the student row with current balances.
func Balance(tx *gorm.DB, studentID uuid.UUID) (*model.Student, error) {
	var st model.Student
	err := tx.Select("id", "available_credits", "total_credits").First(&st, "id = ?", studentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	return &st, nil
}

func record(tx *gorm.DB, studentID uuid.UUID, kind model.CreditKind, dAvail, dTotal int, ref Reference) (*model.CreditTransaction, error) {
	st, err := Balance(tx, studentID)
	if err != nil {
		return nil, err
	}
	row := &model.CreditTransaction{
		StudentID:             studentID,
		Kind:                  kind,
		DeltaAvailable:        dAvail,
		DeltaTotal:            dTotal,
		BalanceAvailableAfter: st.AvailableCredits,
		BalanceTotalAfter:     st.TotalCredits,
		ReferenceType:         ref.Type,
	}
	if ref.ID != uuid.Nil {
		id := ref.ID
		row.ReferenceID = &id
	}
	if err := tx.Create(row).Error; err != nil {
		return nil, fmt.Errorf("write credit ledger: %w", err)
	}
	return row, nil
}
