package community

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/principal"
	"github.com/Alijeyrad/drivingschool_backend/pkg/validate"
)

// Refer records an invitation. It converts when the email registers.
func (s *communityService) Refer(ctx context.Context, p principal.Principal, req ReferralRequest) (*model.Referral, error) {
	if p.IsAnonymous() {
		return nil, ErrLoginRequired
	}
	if err := validate.Struct(req); err != nil {
		return nil, ErrInvalidInput.Wrap(err)
	}
	addr := strings.ToLower(strings.TrimSpace(req.Email))

	ref := &model.Referral{ReferrerID: p.UserID, ReferredEmail: addr}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var me model.User
		if err := tx.Select("id", "email").First(&me, "id = ?", p.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoginRequired
			}
			return fmt.Errorf("load referrer: %w", err)
		}
		if strings.EqualFold(me.Email, addr) {
			return ErrSelfReferral
		}

		var n int64
		if err := tx.Model(&model.User{}).Where("LOWER(email) = ?", addr).Count(&n).Error; err != nil {
			return fmt.Errorf("check member: %w", err)
		}
		if n > 0 {
			return ErrAlreadyMember
		}

		if err := tx.Create(ref).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyReferred
			}
			return fmt.Errorf("create referral: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func (s *communityService) ListReferrals(ctx context.Context, p principal.Principal) ([]model.Referral, error) {
	if p.IsAnonymous() {
		return nil, ErrLoginRequired
	}
	var out []model.Referral
	if err := s.db.WithContext(ctx).Where("referrer_id = ?", p.UserID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	return out, nil
}
