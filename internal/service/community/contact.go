package community

import (
	"context"
	"fmt"
	"strings"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/pkg/email"
	"github.com/Alijeyrad/drivingschool_backend/pkg/validate"
)

func (s *communityService) Contact(ctx context.Context, req ContactRequest) (*model.ContactMessage, error) {
	if err := validate.Struct(req); err != nil {
		return nil, ErrInvalidInput.Wrap(err)
	}
	msg := &model.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Message: strings.TrimSpace(req.Message),
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("create contact message: %w", err)
	}

	s.notifyAdmin(ctx, func(admin string) email.Message {
		return email.BuildContactEmail(admin, msg.Name, msg.Email, msg.Message)
	})
	return msg, nil
}
