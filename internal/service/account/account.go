package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/principal"
	"github.com/Alijeyrad/drivingschool_backend/pkg/crypto"
	pasetotoken "github.com/Alijeyrad/drivingschool_backend/pkg/paseto"
	"github.com/Alijeyrad/drivingschool_backend/pkg/util/password"
	"github.com/Alijeyrad/drivingschool_backend/pkg/util/phone"
	"github.com/Alijeyrad/drivingschool_backend/pkg/validate"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"notblank,max=150"`
	LastName  string `json:"last_name" validate:"notblank,max=150"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Address   string `json:"address"`
	PermitNo  string `json:"permit_no" validate:"omitempty,max=50"`
}

type LoginRequest struct {
	// Identifier is a username or an email address.
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UpdateProfileRequest struct {
	FirstName     *string `json:"first_name" validate:"omitempty,notblank,max=150"`
	LastName      *string `json:"last_name" validate:"omitempty,notblank,max=150"`
	Phone         *string `json:"phone" validate:"omitempty,max=32"`
	Address       *string `json:"address"`
	PermitNo      *string `json:"permit_no" validate:"omitempty,max=50"`
	LicenseStatus *string `json:"license_status" validate:"omitempty,max=50"`
	Bio           *string `json:"bio"`
}

type CreateInstructorRequest struct {
	Username        string  `json:"username" validate:"required,min=3,max=150"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=8"`
	FirstName       string  `json:"first_name" validate:"notblank,max=150"`
	LastName        string  `json:"last_name" validate:"max=150"`
	Phone           string  `json:"phone" validate:"omitempty,max=32"`
	Bio             string  `json:"bio"`
	ExperienceYears int     `json:"experience_years" validate:"gte=0,lte=60"`
	Rating          float64 `json:"rating" validate:"gte=0,lte=5"`
}

// StudentProfile is a student row with the permit number opened.
type StudentProfile struct {
	model.Student
	PermitNo string `json:"permit_no"`
}

type ProfileView struct {
	User       *model.User       `json:"user"`
	Student    *StudentProfile   `json:"student,omitempty"`
	Instructor *model.Instructor `json:"instructor,omitempty"`
}

// Options carries the collaborators that have sensible defaults.
type Options struct {
	Hasher      *password.Hasher
	Cipher      *crypto.Cipher
	PhoneRegion string
	Logger      *slog.Logger
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req LoginRequest) (*AuthTokens, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	// ValidateSession checks that sessionID is live and belongs to userID.
	ValidateSession(ctx context.Context, sessionID, userID uuid.UUID) error

	Resolve(ctx context.Context, userID uuid.UUID) (principal.Principal, error)
	Profile(ctx context.Context, p principal.Principal) (*ProfileView, error)
	UpdateProfile(ctx context.Context, p principal.Principal, req UpdateProfileRequest) (*ProfileView, error)

	CreateInstructor(ctx context.Context, p principal.Principal, req CreateInstructorRequest) (*model.Instructor, error)
	SetInstructorAvailability(ctx context.Context, p principal.Principal, instructorID uuid.UUID, available bool) (*model.Instructor, error)
	ListInstructors(ctx context.Context, onlyAvailable bool) ([]model.Instructor, error)

	// EnsureAdmin and EnsureInstructor create the account unless the username
	// exists. They report whether a row was created.
	EnsureAdmin(ctx context.Context, username, email, pw string) (bool, error)
	EnsureInstructor(ctx context.Context, req CreateInstructorRequest) (bool, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type accountService struct {
	db       *gorm.DB
	sessions SessionStore
	tokens   *pasetotoken.Manager
	hasher   *password.Hasher
	cipher   *crypto.Cipher
	region   string
	logger   *slog.Logger
}

func New(db *gorm.DB, sessions SessionStore, tokens *pasetotoken.Manager, opts Options) Service {
	if opts.Hasher == nil {
		opts.Hasher = password.NewHasher(nil)
	}
	if opts.PhoneRegion == "" {
		opts.PhoneRegion = phone.DefaultRegion
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &accountService{
		db:       db,
		sessions: sessions,
		tokens:   tokens,
		hasher:   opts.Hasher,
		cipher:   opts.Cipher,
		region:   opts.PhoneRegion,
		logger:   opts.Logger.With("service", "account"),
	}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func (s *accountService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, ErrInvalidInput.Wrap(err)
	}

	tel, err := phone.Normalize(req.Phone, s.region)
	if err != nil {
		return nil, ErrInvalidPhone
	}
	permit, err := s.cipher.Seal(strings.TrimSpace(req.PermitNo))
	if err != nil {
		return nil, fmt.Errorf("seal permit number: %w", err)
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         model.RoleStudent,
		IsActive:     true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkUnique(tx, u.Username, u.Email); err != nil {
			return err
		}
		if err := tx.Create(u).Error; err != nil {
			return s.mapUniqueErr(err)
		}

		st := &model.Student{
			UserID:        u.ID,
			Phone:         tel,
			Address:       strings.TrimSpace(req.Address),
			PermitNo:      permit,
			LicenseStatus: model.DefaultLicenseStatus,
		}
		if err := tx.Create(st).Error; err != nil {
			return fmt.Errorf("create student: %w", err)
		}
		if err := tx.Create(&model.Cart{StudentID: st.ID}).Error; err != nil {
			return fmt.Errorf("create cart: %w", err)
		}

		res := tx.Model(&model.Referral{}).
			Where("referred_email = ? AND is_converted = ?", u.Email, false).
			Update("is_converted", true)
		if res.Error != nil {
			return fmt.Errorf("convert referrals: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			s.logger.InfoContext(ctx, "referral converted", "email", u.Email, "count", res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "student registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// ---------------------------------------------------------------------------
// Login / sessions
// ---------------------------------------------------------------------------

func (s *accountService) Login(ctx context.Context, req LoginRequest) (*AuthTokens, error) {
	ident := strings.TrimSpace(req.Identifier)
	if ident == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	var u model.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", ident, normalizeEmail(ident)).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := password.Verify(u.PasswordHash, req.Password); err != nil {
		s.logger.InfoContext(ctx, "login failed", "user_id", u.ID)
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}

	updates := map[string]any{"last_login_at": time.Now().UTC()}
	if s.hasher.NeedsRehash(u.PasswordHash) {
		if h, err := s.hasher.Hash(req.Password); err == nil {
			updates["password_hash"] = h
		}
	}
	if err := s.db.WithContext(ctx).Model(&u).Updates(updates).Error; err != nil {
		s.logger.WarnContext(ctx, "update last login", "user_id", u.ID, "error", err)
	}

	return s.createSession(ctx, u.ID)
}

func (s *accountService) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil || !claims.IsRefresh() || claims.SessionID == nil {
		return nil, ErrInvalidToken
	}

	if err := s.ValidateSession(ctx, *claims.SessionID, claims.UserID); err != nil {
		return nil, err
	}
	if err := s.sessions.Touch(ctx, *claims.SessionID, s.tokens.RefreshTTL()); err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccess(claims.UserID, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func (s *accountService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	deleted, err := s.sessions.Delete(ctx, sessionID)
	if err != nil {
		return err
	}
	if !deleted {
		s.logger.DebugContext(ctx, "logout: session already expired", "session_id", sessionID)
	}
	return nil
}

func (s *accountService) ValidateSession(ctx context.Context, sessionID, userID uuid.UUID) error {
	owner, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrSessionNotFound
	}
	return nil
}

func (s *accountService) createSession(ctx context.Context, userID uuid.UUID) (*AuthTokens, error) {
	sessionID := uuid.Must(uuid.NewV7())
	if err := s.sessions.Create(ctx, sessionID, userID, s.tokens.RefreshTTL()); err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccess(userID, &sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(userID, &sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// ---------------------------------------------------------------------------
// Principal resolution and profiles
// ---------------------------------------------------------------------------

func (s *accountService) Resolve(ctx context.Context, userID uuid.UUID) (principal.Principal, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return principal.AnonymousPrincipal(), ErrUserNotFound
		}
		return principal.AnonymousPrincipal(), fmt.Errorf("get user: %w", err)
	}
	if !u.IsActive {
		return principal.AnonymousPrincipal(), ErrAccountInactive
	}

	switch u.Role {
	case model.RoleAdmin:
		return principal.ForAdmin(u.ID), nil
	case model.RoleInstructor:
		var in model.Instructor
		if err := s.db.WithContext(ctx).Select("id").First(&in, "user_id = ?", u.ID).Error; err != nil {
			return principal.AnonymousPrincipal(), s.missingProfile(err)
		}
		return principal.ForInstructor(u.ID, in.ID), nil
	default:
		var st model.Student
		if err := s.db.WithContext(ctx).Select("id").First(&st, "user_id = ?", u.ID).Error; err != nil {
			return principal.AnonymousPrincipal(), s.missingProfile(err)
		}
		return principal.ForStudent(u.ID, st.ID), nil
	}
}

func (s *accountService) Profile(ctx context.Context, p principal.Principal) (*ProfileView, error) {
	if p.IsAnonymous() {
		return nil, ErrNoProfile
	}
	return s.loadProfile(s.db.WithContext(ctx), p)
}

func (s *accountService) UpdateProfile(ctx context.Context, p principal.Principal, req UpdateProfileRequest) (*ProfileView, error) {
	if p.IsAnonymous() {
		return nil, ErrNoProfile
	}
	if err := validate.Struct(req); err != nil {
		return nil, ErrInvalidInput.Wrap(err)
	}

	userUpdates := map[string]any{}
	if req.FirstName != nil {
		userUpdates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		userUpdates["last_name"] = strings.TrimSpace(*req.LastName)
	}

	profileUpdates := map[string]any{}
	if req.Phone != nil {
		tel, err := phone.Normalize(*req.Phone, s.region)
		if err != nil {
			return nil, ErrInvalidPhone
		}
		profileUpdates["phone"] = tel
	}
	switch {
	case p.IsStudent():
		if req.Address != nil {
			profileUpdates["address"] = strings.TrimSpace(*req.Address)
		}
		if req.PermitNo != nil {
			sealed, err := s.cipher.Seal(strings.TrimSpace(*req.PermitNo))
			if err != nil {
				return nil, fmt.Errorf("seal permit number: %w", err)
			}
			profileUpdates["permit_no"] = sealed
		}
		if req.LicenseStatus != nil && strings.TrimSpace(*req.LicenseStatus) != "" {
			profileUpdates["license_status"] = strings.TrimSpace(*req.LicenseStatus)
		}
	case p.IsInstructor():
		if req.Bio != nil {
			profileUpdates["bio"] = strings.TrimSpace(*req.Bio)
		}
	}

	var view *ProfileView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(userUpdates) > 0 {
			if err := tx.Model(&model.User{}).Where("id = ?", p.UserID).Updates(userUpdates).Error; err != nil {
				return fmt.Errorf("update user: %w", err)
			}
		}
		if len(profileUpdates) > 0 {
			var err error
			switch {
			case p.IsStudent():
				err = tx.Model(&model.Student{}).Where("id = ?", p.StudentID).Updates(profileUpdates).Error
			case p.IsInstructor():
				err = tx.Model(&model.Instructor{}).Where("id = ?", p.InstructorID).Updates(profileUpdates).Error
			}
			if err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
		}
		var err error
		view, err = s.loadProfile(tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *accountService) loadProfile(db *gorm.DB, p principal.Principal) (*ProfileView, error) {
	var u model.User
	if err := db.First(&u, "id = ?", p.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	view := &ProfileView{User: &u}

	switch {
	case p.IsStudent():
		var st model.Student
		if err := db.First(&st, "id = ?", p.StudentID).Error; err != nil {
			return nil, s.missingProfile(err)
		}
		permit, err := s.cipher.Open(st.PermitNo)
		if err != nil {
			s.logger.Warn("open permit number", "student_id", st.ID, "error", err)
			permit = ""
		}
		view.Student = &StudentProfile{Student: st, PermitNo: permit}
	case p.IsInstructor():
		var in model.Instructor
		if err := db.First(&in, "id = ?", p.InstructorID).Error; err != nil {
			return nil, s.missingProfile(err)
		}
		view.Instructor = &in
	}
	return view, nil
}

// ---------------------------------------------------------------------------
// Instructors
// ---------------------------------------------------------------------------

func (s *accountService) CreateInstructor(ctx context.Context, p principal.Principal, req CreateInstructorRequest) (*model.Instructor, error) {
	if !p.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return s.createInstructor(ctx, req)
}

func (s *accountService) createInstructor(ctx context.Context, req CreateInstructorRequest) (*model.Instructor, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, ErrInvalidInput.Wrap(err)
	}
	tel, err := phone.Normalize(req.Phone, s.region)
	if err != nil {
		return nil, ErrInvalidPhone
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         model.RoleInstructor,
		IsActive:     true,
	}
	in := &model.Instructor{
		Phone:           tel,
		Bio:             strings.TrimSpace(req.Bio),
		ExperienceYears: req.ExperienceYears,
		Rating:          req.Rating,
		IsAvailable:     true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkUnique(tx, u.Username, u.Email); err != nil {
			return err
		}
		if err := tx.Create(u).Error; err != nil {
			return s.mapUniqueErr(err)
		}
		in.UserID = u.ID
		if err := tx.Create(in).Error; err != nil {
			return fmt.Errorf("create instructor: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	in.User = u
	s.logger.InfoContext(ctx, "instructor created", "instructor_id", in.ID, "username", u.Username)
	return in, nil
}

func (s *accountService) SetInstructorAvailability(ctx context.Context, p principal.Principal, instructorID uuid.UUID, available bool) (*model.Instructor, error) {
	if !p.IsAdmin() {
		return nil, ErrAdminOnly
	}

	res := s.db.WithContext(ctx).Model(&model.Instructor{}).
		Where("id = ?", instructorID).
		Update("is_available", available)
	if res.Error != nil {
		return nil, fmt.Errorf("update availability: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInstructorNotFound
	}

	var in model.Instructor
	if err := s.db.WithContext(ctx).Preload("User").First(&in, "id = ?", instructorID).Error; err != nil {
		return nil, fmt.Errorf("reload instructor: %w", err)
	}
	return &in, nil
}

func (s *accountService) ListInstructors(ctx context.Context, onlyAvailable bool) ([]model.Instructor, error) {
	q := s.db.WithContext(ctx).Model(&model.Instructor{}).
		Joins("User").
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Table: "User", Name: "first_name"}},
			{Column: clause.Column{Table: "User", Name: "last_name"}},
		}})
	if onlyAvailable {
		q = q.Where("instructors.is_available = ?", true)
	}

	var out []model.Instructor
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Seeding
// ---------------------------------------------------------------------------

func (s *accountService) EnsureAdmin(ctx context.Context, username, email, pw string) (bool, error) {
	exists, err := s.usernameExists(ctx, username)
	if err != nil || exists {
		return false, err
	}
	hash, err := s.hasher.Hash(pw)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Username:     username,
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		FirstName:    "Admin",
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return false, s.mapUniqueErr(err)
	}
	return true, nil
}

func (s *accountService) EnsureInstructor(ctx context.Context, req CreateInstructorRequest) (bool, error) {
	exists, err := s.usernameExists(ctx, strings.TrimSpace(req.Username))
	if err != nil || exists {
		return false, err
	}
	if _, err := s.createInstructor(ctx, req); err != nil {
		return false, err
	}
	return true, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *accountService) usernameExists(ctx context.Context, username string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return n > 0, nil
}

func (s *accountService) checkUnique(tx *gorm.DB, username, email string) error {
	var n int64
	if err := tx.Model(&model.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if n > 0 {
		return ErrUsernameTaken
	}
	if err := tx.Model(&model.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if n > 0 {
		return ErrEmailTaken
	}
	return nil
}

// mapUniqueErr covers the race where a concurrent insert wins after checkUnique.
func (s *accountService) mapUniqueErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUsernameTaken
	}
	return fmt.Errorf("create user: %w", err)
}

func (s *accountService) missingProfile(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoProfile
	}
	return fmt.Errorf("get profile: %w", err)
}
