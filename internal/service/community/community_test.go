package community

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/internal/apperr"
	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/principal"
	"github.com/Alijeyrad/drivingschool_backend/internal/testutil"
	"github.com/Alijeyrad/drivingschool_backend/pkg/email"
	"github.com/Alijeyrad/drivingschool_backend/pkg/logs"
	"github.com/Alijeyrad/drivingschool_backend/pkg/validate"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string]string{}, types: map[string]string{}}
}

func (m *memStore) Upload(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = string(b)
	m.types[key] = contentType
	return nil
}

func (m *memStore) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://files.example.com/" + key, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type outbox struct {
	mu   sync.Mutex
	sent []email.Message
}

func (o *outbox) Send(_ context.Context, m email.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, m)
	return nil
}
func (o *outbox) Enabled() bool        { return true }
func (o *outbox) AdminAddress() string { return "admin@successdriving.com" }

func newService(t *testing.T) (Service, *gorm.DB, *memStore, *outbox) {
	t.Helper()
	db := testutil.NewDB(t)
	store := newMemStore()
	mail := &outbox{}
	return New(db, Options{Store: store, Mail: mail, Logger: logs.Discard()}), db, store, mail
}

func studentPrincipal(t *testing.T, db *gorm.DB, credits int) (principal.Principal, *model.Student) {
	t.Helper()
	st := testutil.Student(t, db, credits)
	return principal.ForStudent(st.UserID, st.ID), st
}

func TestReviews(t *testing.T) {
	svc, db, _, _ := newService(t)
	ctx := context.Background()
	p, st := studentPrincipal(t, db, 0)

	for i, c := range []string{"first", "second", "third", "fourth"} {
		r, err := svc.SubmitReview(ctx, p, ReviewRequest{InstructorName: "Mohommad", Rating: i%5 + 1, Comment: c})
		require.NoError(t, err)
		assert.Equal(t, st.User.FullName(), r.StudentName)
	}

	latest, err := svc.LatestReviews(ctx, 0)
	require.NoError(t, err)
	require.Len(t, latest, AboutPageReviews)
	assert.Equal(t, "fourth", latest[0].Comment)

	_, err = svc.SubmitReview(ctx, p, ReviewRequest{InstructorName: "Mohommad", Rating: 6, Comment: "great"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	var fe validate.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe, "rating")

	_, err = svc.SubmitReview(ctx, principal.AnonymousPrincipal(), ReviewRequest{InstructorName: "x", Rating: 5, Comment: "x"})
	assert.ErrorIs(t, err, ErrStudentOnly)
}

func TestApply_StoresCVAndEmailsAdmin(t *testing.T) {
	svc, _, store, mail := newService(t)
	ctx := context.Background()

	app, err := svc.Apply(ctx, JobApplicationRequest{
		FirstName: "Sara", LastName: "Lane", Email: "Sara@Example.com", Phone: "(202) 456-1111",
	}, &CV{Filename: "resume.PDF", Size: 7, Body: strings.NewReader("%PDF-1.")})
	require.NoError(t, err)

	assert.Equal(t, "sara@example.com", app.Email)
	assert.Equal(t, "+12024561111", app.Phone)
	assert.True(t, strings.HasPrefix(app.CVKey, "careers/"))
	assert.True(t, strings.HasSuffix(app.CVKey, ".pdf"))
	assert.Equal(t, "%PDF-1.", store.objects[app.CVKey])
	assert.Equal(t, "application/pdf", store.types[app.CVKey])

	require.Len(t, mail.sent, 1)
	assert.Equal(t, []string{"admin@successdriving.com"}, mail.sent[0].To)
	assert.Equal(t, "New Job Application from Sara Lane", mail.sent[0].Subject)
	assert.Contains(t, mail.sent[0].TextBody, "https://files.example.com/"+app.CVKey)

	list, err := svc.ListApplications(ctx, principal.ForAdmin(uuid.New()))
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = svc.ListApplications(ctx, principal.AnonymousPrincipal())
	assert.ErrorIs(t, err, ErrAdminOnly)
}

func TestApply_Rejections(t *testing.T) {
	svc, db, store, _ := newService(t)
	ctx := context.Background()
	ok := JobApplicationRequest{FirstName: "A", LastName: "B", Email: "a@example.com"}
	cv := func(name string, size int64) *CV {
		return &CV{Filename: name, Size: size, Body: strings.NewReader("x")}
	}

	_, err := svc.Apply(ctx, ok, nil)
	assert.ErrorIs(t, err, ErrCVRequired)
	_, err = svc.Apply(ctx, ok, cv("photo.png", 1))
	assert.ErrorIs(t, err, ErrCVType)
	_, err = svc.Apply(ctx, ok, cv("cv.docx", MaxCVSize+1))
	assert.ErrorIs(t, err, ErrCVTooLarge)
	_, err = svc.Apply(ctx, JobApplicationRequest{FirstName: "A", LastName: "B", Email: "nope"}, cv("cv.pdf", 1))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Apply(ctx, JobApplicationRequest{FirstName: "A", LastName: "B", Email: "a@example.com", Phone: "12"}, cv("cv.pdf", 1))
	assert.ErrorIs(t, err, ErrInvalidPhone)

	noStore := New(db, Options{Logger: logs.Discard()})
	_, err = noStore.Apply(ctx, ok, cv("cv.pdf", 1))
	assert.ErrorIs(t, err, ErrUploadsDisabled)

	assert.Empty(t, store.objects)
	var n int64
	require.NoError(t, db.Model(&model.JobApplication{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestContact(t *testing.T) {
	svc, db, _, mail := newService(t)
	ctx := context.Background()

	msg, err := svc.Contact(ctx, ContactRequest{Name: "Jo", Email: "jo@example.com", Message: "Do you teach on weekends?"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, msg.ID)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "jo@example.com", mail.sent[0].ReplyTo)
	assert.Contains(t, mail.sent[0].TextBody, "Do you teach on weekends?")

	_, err = svc.Contact(ctx, ContactRequest{Name: " ", Email: "jo@example.com", Message: "hi"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	var n int64
	require.NoError(t, db.Model(&model.ContactMessage{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestRefer(t *testing.T) {
	svc, db, _, _ := newService(t)
	ctx := context.Background()
	p, st := studentPrincipal(t, db, 0)
	other, _ := studentPrincipal(t, db, 0)

	ref, err := svc.Refer(ctx, p, ReferralRequest{Email: "Friend@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "friend@example.com", ref.ReferredEmail)
	assert.False(t, ref.IsConverted)

	_, err = svc.Refer(ctx, p, ReferralRequest{Email: "friend@example.com"})
	assert.ErrorIs(t, err, ErrAlreadyReferred)

	_, err = svc.Refer(ctx, p, ReferralRequest{Email: st.User.Email})
	assert.ErrorIs(t, err, ErrSelfReferral)

	var member model.User
	require.NoError(t, db.First(&member, "id = ?", other.UserID).Error)
	_, err = svc.Refer(ctx, p, ReferralRequest{Email: member.Email})
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = svc.Refer(ctx, principal.AnonymousPrincipal(), ReferralRequest{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrLoginRequired)

	mine, err := svc.ListReferrals(ctx, p)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestGiftCards(t *testing.T) {
	svc, db, _, _ := newService(t)
	ctx := context.Background()
	admin := principal.ForAdmin(testutil.Admin(t, db).ID)
	p, _ := studentPrincipal(t, db, 2)

	card, err := svc.IssueGiftCard(ctx, admin, IssueGiftCardRequest{Value: 16000, Credits: 2})
	require.NoError(t, err)
	assert.Len(t, card.Code, 12)
	assert.Equal(t, card.Code, strings.ReplaceAll(card.DisplayCode, "-", ""))

	_, err = svc.IssueGiftCard(ctx, p, IssueGiftCardRequest{Value: 1, Credits: 1})
	assert.ErrorIs(t, err, ErrAdminOnly)
	_, err = svc.IssueGiftCard(ctx, admin, IssueGiftCardRequest{Value: 1, Credits: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	res, err := svc.RedeemGiftCard(ctx, p, strings.ToLower(card.DisplayCode))
	require.NoError(t, err)
	assert.Equal(t, 2, res.CreditsAdded)
	assert.Equal(t, 4, res.AvailableCredits)
	assert.True(t, res.GiftCard.IsUsed)

	var st model.Student
	require.NoError(t, db.First(&st, "id = ?", p.StudentID).Error)
	assert.Equal(t, 4, st.AvailableCredits)
	assert.Equal(t, 4, st.TotalCredits)

	var ledger model.CreditTransaction
	require.NoError(t, db.First(&ledger, "student_id = ? AND kind = ?", p.StudentID, model.CreditGiftCard).Error)
	assert.Equal(t, 2, ledger.DeltaTotal)

	_, err = svc.RedeemGiftCard(ctx, p, card.Code)
	assert.ErrorIs(t, err, ErrGiftCardUsed)
	assert.Equal(t, apperr.KindStateConflict, apperr.KindOf(err))

	_, err = svc.RedeemGiftCard(ctx, p, "NOPE-NOPE")
	assert.ErrorIs(t, err, ErrGiftCardNotFound)
	_, err = svc.RedeemGiftCard(ctx, admin, card.Code)
	assert.ErrorIs(t, err, ErrStudentOnly)

	require.NoError(t, db.First(&st, "id = ?", p.StudentID).Error)
	assert.Equal(t, 4, st.AvailableCredits)
}
