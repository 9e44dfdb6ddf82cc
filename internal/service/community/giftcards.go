package community

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/principal"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/credit"
	"github.com/Alijeyrad/drivingschool_backend/pkg/util/codes"
	"github.com/Alijeyrad/drivingschool_backend/pkg/validate"
)

const codeAttempts = 3

func (s *communityService) IssueGiftCard(ctx context.Context, p principal.Principal, req IssueGiftCardRequest) (*GiftCardView, error) {
	if !p.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if err := validate.Struct(req); err != nil {
		return nil, ErrInvalidInput.Wrap(err)
	}

	db := s.db.WithContext(ctx)
	for attempt := 1; ; attempt++ {
		code, err := s.codes.GiftCardCode()
		if err != nil {
			return nil, fmt.Errorf("generate gift card code: %w", err)
		}
		card := &model.GiftCard{Code: code, Value: req.Value, Credits: req.Credits}
		err = db.Create(card).Error
		if err == nil {
			s.logger.InfoContext(ctx, "gift card issued", "gift_card_id", card.ID, "credits", card.Credits)
			return s.view(card), nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt == codeAttempts {
			return nil, fmt.Errorf("create gift card: %w", err)
		}
	}
}

// RedeemGiftCard marks the card used and grants its credits in one
// transaction. Codes are accepted with or without dashes and in any case.
func (s *communityService) RedeemGiftCard(ctx context.Context, p principal.Principal, raw string) (*RedeemResult, error) {
	if !p.IsStudent() {
		return nil, ErrStudentOnly
	}
	code := codes.ParseCode(raw)
	if code == "" {
		return nil, ErrGiftCardNotFound
	}

	var (
		card model.GiftCard
		out  RedeemResult
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&card, "code = ?", code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGiftCardNotFound
			}
			return fmt.Errorf("load gift card: %w", err)
		}

		usedAt := s.now().UTC()
		res := tx.Model(&model.GiftCard{}).
			Where("id = ? AND is_used = ?", card.ID, false).
			Updates(map[string]any{"is_used": true, "used_by": p.UserID, "used_at": usedAt})
		if res.Error != nil {
			return fmt.Errorf("redeem gift card: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrGiftCardUsed
		}
		card.IsUsed = true
		card.UsedBy = &p.UserID
		card.UsedAt = &usedAt

		row, err := credit.Grant(tx, p.StudentID, card.Credits, model.CreditGiftCard, credit.Reference{Type: "gift_card", ID: card.ID})
		if err != nil {
			return err
		}
		out.CreditsAdded = card.Credits
		out.AvailableCredits = row.BalanceAvailableAfter
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CreditsGranted(ctx, "gift_card", out.CreditsAdded)
	s.logger.InfoContext(ctx, "gift card redeemed", "gift_card_id", card.ID, "student_id", p.StudentID)
	out.GiftCard = s.view(&card)
	return &out, nil
}

func (s *communityService) view(card *model.GiftCard) *GiftCardView {
	return &GiftCardView{GiftCard: *card, DisplayCode: s.codes.Display(card.Code)}
}
