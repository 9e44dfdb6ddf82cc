package account

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/internal/apperr"
	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/principal"
	"github.com/Alijeyrad/drivingschool_backend/internal/testutil"
	"github.com/Alijeyrad/drivingschool_backend/pkg/crypto"
	"github.com/Alijeyrad/drivingschool_backend/pkg/logs"
	pasetotoken "github.com/Alijeyrad/drivingschool_backend/pkg/paseto"
	"github.com/Alijeyrad/drivingschool_backend/pkg/util/password"
	"github.com/Alijeyrad/drivingschool_backend/pkg/validate"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newService(t *testing.T) (Service, *gorm.DB, *MemorySessionStore) {
	t.Helper()
	db := testutil.NewDB(t)

	keys := pasetotoken.NewLocalKeys()
	tokens, err := pasetotoken.New(pasetotoken.Config{
		Mode:     keys.Mode,
		Issuer:   "drivingschool",
		Audience: "drivingschool-api",
	}, keys)
	require.NoError(t, err)

	cipher, err := crypto.NewCipher(testKey)
	require.NoError(t, err)

	sessions := NewMemorySessionStore()
	svc := New(db, sessions, tokens, Options{
		Hasher: password.NewHasher(password.FastParams()),
		Cipher: cipher,
		Logger: logs.Discard(),
	})
	return svc, db, sessions
}

func registerReq(username string) RegisterRequest {
	return RegisterRequest{
		Username:  username,
		Email:     username + "@Example.com",
		Password:  "Test1234!",
		FirstName: "Sam",
		LastName:  "Rivera",
		Phone:     "(202) 456-1111",
		PermitNo:  "P-12345",
	}
}

func TestRegister_CreatesStudentAndCart(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, registerReq("sam"))
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, u.Role)
	assert.Equal(t, "sam@example.com", u.Email)

	var st model.Student
	require.NoError(t, db.First(&st, "user_id = ?", u.ID).Error)
	assert.Equal(t, "+12024561111", st.Phone)
	assert.Equal(t, model.DefaultLicenseStatus, st.LicenseStatus)
	assert.NotEqual(t, "P-12345", st.PermitNo)
	assert.Zero(t, st.AvailableCredits)

	var carts int64
	require.NoError(t, db.Model(&model.Cart{}).Where("student_id = ?", st.ID).Count(&carts).Error)
	assert.EqualValues(t, 1, carts)

	p, err := svc.Resolve(ctx, u.ID)
	require.NoError(t, err)
	view, err := svc.Profile(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "P-12345", view.Student.PermitNo)
}

func TestRegister_Duplicates(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("sam"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerReq("sam"))
	assert.ErrorIs(t, err, ErrUsernameTaken)

	req := registerReq("other")
	req.Email = "SAM@example.com"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, apperr.KindStateConflict, apperr.KindOf(err))
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newService(t)

	req := registerReq("sa")
	req.Password = "short"
	_, err := svc.Register(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidInput)

	var fe validate.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "username")
	assert.Contains(t, fe, "password")

	req = registerReq("sammy")
	req.Phone = "not a phone"
	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestRegister_ConvertsReferral(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	referrer := testutil.Admin(t, db)
	require.NoError(t, db.Create(&model.Referral{ReferrerID: referrer.ID, ReferredEmail: "newbie@example.com"}).Error)

	_, err := svc.Register(ctx, registerReq("newbie"))
	require.NoError(t, err)

	var ref model.Referral
	require.NoError(t, db.First(&ref, "referred_email = ?", "newbie@example.com").Error)
	assert.True(t, ref.IsConverted)
}

func TestLogin_UsernameOrEmail(t *testing.T) {
	svc, _, sessions := newService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, registerReq("sam"))
	require.NoError(t, err)

	tokens, err := svc.Login(ctx, LoginRequest{Identifier: "sam", Password: "Test1234!"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	_, err = svc.Login(ctx, LoginRequest{Identifier: "SAM@example.com", Password: "Test1234!"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Identifier: "sam", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Identifier: "nobody", Password: "Test1234!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Len(t, sessions.sessions, 2)
	for sid := range sessions.sessions {
		assert.NoError(t, svc.ValidateSession(ctx, sid, u.ID))
		assert.ErrorIs(t, svc.ValidateSession(ctx, sid, uuid.New()), ErrSessionNotFound)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	svc, _, sessions := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, registerReq("sam"))
	require.NoError(t, err)

	tokens, err := svc.Login(ctx, LoginRequest{Identifier: "sam", Password: "Test1234!"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refreshed, err := svc.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, tokens.RefreshToken, refreshed.RefreshToken)

	var sid uuid.UUID
	for id := range sessions.sessions {
		sid = id
	}
	require.NoError(t, svc.Logout(ctx, sid))
	require.NoError(t, svc.Logout(ctx, sid))

	_, err = svc.Refresh(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResolve_Roles(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	in := testutil.Instructor(t, db, "john_doe", true)
	p, err := svc.Resolve(ctx, in.UserID)
	require.NoError(t, err)
	assert.True(t, p.IsInstructor())
	assert.Equal(t, in.ID, p.InstructorID)

	admin := testutil.Admin(t, db)
	p, err = svc.Resolve(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())

	_, err = svc.Resolve(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile_Student(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, registerReq("sam"))
	require.NoError(t, err)
	p, err := svc.Resolve(ctx, u.ID)
	require.NoError(t, err)

	addr, permit, status := "12 Elm St", "NEW-1", "Full License"
	view, err := svc.UpdateProfile(ctx, p, UpdateProfileRequest{Address: &addr, PermitNo: &permit, LicenseStatus: &status})
	require.NoError(t, err)
	assert.Equal(t, addr, view.Student.Address)
	assert.Equal(t, permit, view.Student.PermitNo)
	assert.Equal(t, status, view.Student.LicenseStatus)

	bad := "xx"
	_, err = svc.UpdateProfile(ctx, p, UpdateProfileRequest{Phone: &bad})
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = svc.UpdateProfile(ctx, principal.AnonymousPrincipal(), UpdateProfileRequest{})
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestInstructors_AdminOnly(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	admin := principal.ForAdmin(testutil.Admin(t, db).ID)

	req := CreateInstructorRequest{
		Username: "mohommad", Email: "mohommad@example.com", Password: "Test1234!",
		FirstName: "Mohommad", Bio: "Calm", ExperienceYears: 4, Rating: 4.9,
	}
	_, err := svc.CreateInstructor(ctx, principal.ForStudent(uuid.New(), uuid.New()), req)
	assert.ErrorIs(t, err, ErrAdminOnly)

	in, err := svc.CreateInstructor(ctx, admin, req)
	require.NoError(t, err)
	assert.True(t, in.IsAvailable)

	testutil.Instructor(t, db, "aaron", true)

	list, err := svc.ListInstructors(ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Aaron", list[0].User.FirstName)

	_, err = svc.SetInstructorAvailability(ctx, admin, in.ID, false)
	require.NoError(t, err)
	list, err = svc.ListInstructors(ctx, true)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.SetInstructorAvailability(ctx, admin, uuid.New(), true)
	assert.ErrorIs(t, err, ErrInstructorNotFound)
}

func TestEnsure_Idempotent(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "admin", "admin@example.com", "Test1234!")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = svc.EnsureAdmin(ctx, "admin", "admin@example.com", "Test1234!")
	require.NoError(t, err)
	assert.False(t, created)

	req := CreateInstructorRequest{Username: "john_doe", Email: "john.doe@example.com", Password: "Test1234!", FirstName: "John", LastName: "Doe"}
	created, err = svc.EnsureInstructor(ctx, req)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = svc.EnsureInstructor(ctx, req)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestRedisSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisSessionStore(rdb)
	ctx := context.Background()
	sid, uid := uuid.New(), uuid.New()

	require.NoError(t, store.Create(ctx, sid, uid, time.Minute))
	assert.True(t, mr.Exists("session:"+sid.String()))

	got, err := store.Get(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, uid, got)

	require.NoError(t, store.Touch(ctx, sid, time.Hour))
	assert.Equal(t, time.Hour, mr.TTL("session:"+sid.String()))

	mr.FastForward(2 * time.Hour)
	_, err = store.Get(ctx, sid)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, store.Touch(ctx, sid, time.Hour), ErrSessionNotFound)

	deleted, err := store.Delete(ctx, sid)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	store := NewMemorySessionStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()
	sid := uuid.New()

	require.NoError(t, store.Create(ctx, sid, uuid.New(), time.Minute))
	now = now.Add(2 * time.Minute)
	_, err := store.Get(ctx, sid)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
