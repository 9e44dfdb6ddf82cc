package community

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/principal"
	"github.com/Alijeyrad/drivingschool_backend/pkg/email"
	"github.com/Alijeyrad/drivingschool_backend/pkg/s3"
	"github.com/Alijeyrad/drivingschool_backend/pkg/util/phone"
	"github.com/Alijeyrad/drivingschool_backend/pkg/validate"
)

const (
	MaxCVSize = 5 << 20
	cvPrefix  = "careers"
)

var cvTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

func (s *communityService) Apply(ctx context.Context, req JobApplicationRequest, cv *CV) (*model.JobApplication, error) {
	if err := validate.Struct(req); err != nil {
		return nil, ErrInvalidInput.Wrap(err)
	}
	tel, err := phone.Normalize(req.Phone, s.region)
	if err != nil {
		return nil, ErrInvalidPhone
	}
	if cv == nil || cv.Body == nil {
		return nil, ErrCVRequired
	}
	contentType, ok := cvTypes[strings.ToLower(filepath.Ext(cv.Filename))]
	if !ok {
		return nil, ErrCVType
	}
	if cv.Size > MaxCVSize {
		return nil, ErrCVTooLarge
	}
	if s.store == nil {
		return nil, ErrUploadsDisabled
	}

	now := s.now().UTC()
	key := s3.ObjectKey(cvPrefix, cv.Filename, now)
	if err := s.store.Upload(ctx, key, contentType, cv.Body, cv.Size); err != nil {
		return nil, fmt.Errorf("upload cv: %w", err)
	}

	app := &model.JobApplication{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     tel,
		CVKey:     key,
		AppliedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(app).Error; err != nil {
		if derr := s.store.Delete(context.WithoutCancel(ctx), key); derr != nil {
			err = errors.Join(err, derr)
		}
		return nil, fmt.Errorf("create job application: %w", err)
	}
	s.logger.InfoContext(ctx, "job application received", "application_id", app.ID, "email", app.Email)

	link, err := s.store.PresignDownload(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "presign cv", "key", key, "error", err)
	}
	s.notifyAdmin(ctx, func(admin string) email.Message {
		return email.BuildJobApplicationEmail(admin, app.FirstName, app.LastName, app.Email, app.Phone, link)
	})
	return app, nil
}

func (s *communityService) ListApplications(ctx context.Context, p principal.Principal) ([]model.JobApplication, error) {
	if !p.IsAdmin() {
		return nil, ErrAdminOnly
	}
	var out []model.JobApplication
	if err := s.db.WithContext(ctx).Order("applied_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list job applications: %w", err)
	}
	return out, nil
}
