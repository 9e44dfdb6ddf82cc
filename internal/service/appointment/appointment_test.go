package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/internal/apperr"
	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/principal"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/notification"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/scheduling"
	"github.com/Alijeyrad/drivingschool_backend/internal/testutil"
	"github.com/Alijeyrad/drivingschool_backend/pkg/logs"
)

type recorder struct {
	mu     sync.Mutex
	events []notification.Event
}

func (r *recorder) Publish(_ context.Context, e notification.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []notification.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notification.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	svc    Service
	db     *gorm.DB
	events *recorder
	now    time.Time
}

// Lessons are on the hour, so "now" is too: tomorrow 13:00 is 25h away.
func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		db:     testutil.NewDB(t),
		events: &recorder{},
		now:    time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	sched := scheduling.New(h.db, scheduling.DefaultConfig(), scheduling.WithClock(func() time.Time { return h.now }))
	h.svc = New(h.db, sched, h.events, nil, logs.Discard())
	return h
}

func (h *harness) student(t *testing.T, credits int) principal.Principal {
	t.Helper()
	st := testutil.Student(t, h.db, credits)
	return principal.ForStudent(st.UserID, st.ID)
}

func (h *harness) balance(t *testing.T, p principal.Principal) model.Student {
	t.Helper()
	var st model.Student
	require.NoError(t, h.db.First(&st, "id = ?", p.StudentID).Error)
	return st
}

func (h *harness) count(t *testing.T, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&model.Appointment{}).Where(where, args...).Count(&n).Error)
	return n
}

func (h *harness) purchase(t *testing.T, p principal.Principal, plan *model.LessonPlan, at time.Time) {
	t.Helper()
	require.NoError(t, h.db.Create(&model.Purchase{
		StudentID:      p.StudentID,
		PlanID:         plan.ID,
		CreditsGranted: plan.Hours,
		Amount:         plan.Price,
		PaymentStatus:  model.PaymentCompleted,
		PurchasedAt:    at,
	}).Error)
}

func bookReq(instructorID uuid.UUID, date, clock string) BookRequest {
	return BookRequest{InstructorID: instructorID, Date: date, Time: clock}
}

func TestBook_DecrementsCreditAndAttachesPlan(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	p := h.student(t, 4)
	plan := testutil.Plan(t, h.db, "Momentum Drive", 4, 30000, false)
	h.purchase(t, p, plan, h.now.Add(-time.Hour))
	in := testutil.Instructor(t, h.db, "mohommad", true)

	appt, err := h.svc.Book(ctx, p, BookRequest{
		InstructorID:        in.ID,
		Date:                "2026-03-12",
		Time:                "10:00",
		SpecialRequirements: "  automatic car please ",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusScheduled, appt.Status)
	assert.Equal(t, 1, appt.CreditsUsed)
	assert.Equal(t, model.LessonBeginner, appt.LessonType)
	require.NotNil(t, appt.PlanID)
	assert.Equal(t, plan.ID, *appt.PlanID)
	assert.Equal(t, "automatic car please", appt.SpecialRequirements)
	assert.True(t, appt.ScheduledTime.Equal(time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Mohommad", appt.Instructor.Name())

	st := h.balance(t, p)
	assert.Equal(t, 3, st.AvailableCredits)
	assert.Equal(t, 4, st.TotalCredits)

	var ledger model.CreditTransaction
	require.NoError(t, h.db.First(&ledger, "student_id = ?", p.StudentID).Error)
	assert.Equal(t, model.CreditBooking, ledger.Kind)
	assert.Equal(t, -1, ledger.DeltaAvailable)
	require.NotNil(t, ledger.ReferenceID)
	assert.Equal(t, appt.ID, *ledger.ReferenceID)

	assert.Equal(t, []notification.EventType{notification.EventBooked}, h.events.types())
}

func TestBook_TestPrepPlanWins(t *testing.T) {
	h := newHarness(t)
	p := h.student(t, 2)
	testDay := testutil.Plan(t, h.db, "Test Day Champion", 1, 28000, true)
	quick := testutil.Plan(t, h.db, "Quick Start", 2, 16000, false)
	h.purchase(t, p, testDay, h.now.Add(-48*time.Hour))
	h.purchase(t, p, quick, h.now.Add(-time.Hour))
	in := testutil.Instructor(t, h.db, "", true)

	appt, err := h.svc.Book(context.Background(), p, bookReq(in.ID, "2026-03-12", "09:00"))
	require.NoError(t, err)
	assert.Equal(t, model.LessonTestPrep, appt.LessonType)
	require.NotNil(t, appt.PlanID)
	assert.Equal(t, testDay.ID, *appt.PlanID)
}

func TestBook_WithoutPurchasesIsBeginner(t *testing.T) {
	h := newHarness(t)
	p := h.student(t, 1)
	in := testutil.Instructor(t, h.db, "", true)

	appt, err := h.svc.Book(context.Background(), p, bookReq(in.ID, "2026-03-12", "09:00"))
	require.NoError(t, err)
	assert.Equal(t, model.LessonBeginner, appt.LessonType)
	assert.Nil(t, appt.PlanID)
}

func TestBook_NoCredits(t *testing.T) {
	h := newHarness(t)
	p := h.student(t, 0)
	in := testutil.Instructor(t, h.db, "", true)

	_, err := h.svc.Book(context.Background(), p, bookReq(in.ID, "2026-03-12", "09:00"))
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.Equal(t, apperr.KindPolicyViolation, apperr.KindOf(err))

	assert.Zero(t, h.count(t, "student_id = ?", p.StudentID))
	assert.Zero(t, h.balance(t, p).AvailableCredits)
	assert.Empty(t, h.events.types())
}

func TestBook_DoubleBookingConflicts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	in := testutil.Instructor(t, h.db, "", true)
	first := h.student(t, 1)
	second := h.student(t, 1)

	_, err := h.svc.Book(ctx, first, bookReq(in.ID, "2026-03-12", "11:00"))
	require.NoError(t, err)

	_, err = h.svc.Book(ctx, second, bookReq(in.ID, "2026-03-12", "11:00"))
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, apperr.KindStateConflict, apperr.KindOf(err))

	assert.EqualValues(t, 1, h.count(t, "instructor_id = ? AND status = ?", in.ID, model.StatusScheduled))
	assert.Equal(t, 1, h.balance(t, second).AvailableCredits)
}

func TestBook_CancelledSlotCanBeRebooked(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	in := testutil.Instructor(t, h.db, "", true)
	first := h.student(t, 1)
	second := h.student(t, 1)

	appt, err := h.svc.Book(ctx, first, bookReq(in.ID, "2026-03-12", "11:00"))
	require.NoError(t, err)
	_, err = h.svc.Cancel(ctx, first, appt.ID)
	require.NoError(t, err)

	_, err = h.svc.Book(ctx, second, bookReq(in.ID, "2026-03-12", "11:00"))
	require.NoError(t, err)
}

func TestBook_Rejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	in := testutil.Instructor(t, h.db, "", true)
	off := testutil.Instructor(t, h.db, "", false)
	p := h.student(t, 5)

	tests := []struct {
		name string
		req  BookRequest
		want error
		kind apperr.Kind
	}{
		{"past slot", bookReq(in.ID, "2026-03-10", "11:00"), ErrPastDateTime, apperr.KindPolicyViolation},
		{"now is not the future", bookReq(in.ID, "2026-03-10", "12:00"), ErrPastDateTime, apperr.KindPolicyViolation},
		{"unavailable instructor", bookReq(off.ID, "2026-03-12", "09:00"), ErrInstructorUnavailable, apperr.KindStateConflict},
		{"missing instructor", bookReq(uuid.New(), "2026-03-12", "09:00"), ErrInstructorNotFound, apperr.KindNotFound},
		{"bad date", bookReq(in.ID, "12/03/2026", "09:00"), ErrInvalidInput, apperr.KindValidation},
		{"not a slot", bookReq(in.ID, "2026-03-12", "18:00"), scheduling.ErrNotASlot, apperr.KindValidation},
		{"no instructor", bookReq(uuid.Nil, "2026-03-12", "09:00"), ErrInvalidInput, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Book(ctx, p, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}

	assert.Equal(t, 5, h.balance(t, p).AvailableCredits)
	assert.Zero(t, h.count(t, "student_id = ?", p.StudentID))

	_, err := h.svc.Book(ctx, principal.ForInstructor(in.UserID, in.ID), bookReq(in.ID, "2026-03-12", "09:00"))
	assert.ErrorIs(t, err, ErrStudentOnly)
}

func TestCancel_Window(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	in := testutil.Instructor(t, h.db, "", true)
	p := h.student(t, 3)

	far, err := h.svc.Book(ctx, p, bookReq(in.ID, "2026-03-11", "13:00"))
	require.NoError(t, err)
	near, err := h.svc.Book(ctx, p, bookReq(in.ID, "2026-03-11", "11:00"))
	require.NoError(t, err)
	edge, err := h.svc.Book(ctx, p, bookReq(in.ID, "2026-03-11", "12:00"))
	require.NoError(t, err)

	got, err := h.svc.Cancel(ctx, p, far.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)
	assert.NotNil(t, got.CancelledAt)

	_, err = h.svc.Cancel(ctx, p, near.ID)
	assert.ErrorIs(t, err, ErrCancelWindow)
	assert.Equal(t, apperr.KindPolicyViolation, apperr.KindOf(err))

	_, err = h.svc.Cancel(ctx, p, edge.ID)
	assert.ErrorIs(t, err, ErrCancelWindow)

	// Cancelling never refunds.
	assert.Zero(t, h.balance(t, p).AvailableCredits)

	_, err = h.svc.Cancel(ctx, p, far.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	assert.Equal(t, []notification.EventType{
		notification.EventBooked, notification.EventBooked, notification.EventBooked, notification.EventCancelled,
	}, h.events.types())
}

func TestCancel_OwnershipAndStatus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	in := testutil.Instructor(t, h.db, "", true)
	owner := h.student(t, 1)
	other := h.student(t, 1)

	appt, err := h.svc.Book(ctx, owner, bookReq(in.ID, "2026-03-15", "09:00"))
	require.NoError(t, err)

	_, err = h.svc.Cancel(ctx, other, appt.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.svc.Complete(ctx, principal.ForInstructor(in.UserID, in.ID), appt.ID)
	require.NoError(t, err)
	_, err = h.svc.Cancel(ctx, owner, appt.ID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestReschedule_OntoTakenSlotConflicts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	in := testutil.Instructor(t, h.db, "", true)
	alice := h.student(t, 1)
	bob := h.student(t, 1)

	a, err := h.svc.Book(ctx, alice, bookReq(in.ID, "2026-03-14", "09:00"))
	require.NoError(t, err)
	_, err = h.svc.Book(ctx, bob, bookReq(in.ID, "2026-03-14", "15:00"))
	require.NoError(t, err)

	_, err = h.svc.Reschedule(ctx, alice, RescheduleRequest{
		AppointmentID: a.ID, InstructorID: in.ID, Date: "2026-03-14", Time: "15:00", Reason: "work",
	})
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, apperr.KindStateConflict, apperr.KindOf(err))

	unchanged, err := h.svc.Get(ctx, alice, a.ID)
	require.NoError(t, err)
	assert.True(t, unchanged.ScheduledTime.Equal(a.ScheduledTime))
	assert.Empty(t, unchanged.Notes)
}

func TestReschedule_MovesAndNotes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first := testutil.Instructor(t, h.db, "mohommad", true)
	second := testutil.Instructor(t, h.db, "john_doe", true)
	p := h.student(t, 1)

	a, err := h.svc.Book(ctx, p, bookReq(first.ID, "2026-03-14", "09:00"))
	require.NoError(t, err)
	require.NoError(t, h.db.Model(&model.Appointment{}).Where("id = ?", a.ID).Update("notes", "bring glasses").Error)

	moved, err := h.svc.Reschedule(ctx, p, RescheduleRequest{
		AppointmentID: a.ID, InstructorID: second.ID, Date: "2026-03-16", Time: "14:00", Reason: "exam clash",
	})
	require.NoError(t, err)
	assert.Equal(t, second.ID, moved.InstructorID)
	assert.True(t, moved.ScheduledTime.Equal(time.Date(2026, 3, 16, 14, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Rescheduled: exam clash | Previous notes: bring glasses", moved.Notes)
	assert.Equal(t, model.StatusScheduled, moved.Status)

	// Same slot again without a reason keeps the note.
	again, err := h.svc.Reschedule(ctx, p, RescheduleRequest{
		AppointmentID: a.ID, InstructorID: second.ID, Date: "2026-03-16", Time: "14:00",
	})
	require.NoError(t, err)
	assert.Equal(t, moved.Notes, again.Notes)

	assert.Zero(t, h.balance(t, p).AvailableCredits)
	assert.Contains(t, h.events.types(), notification.EventRescheduled)
}

func TestReschedule_Rejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	in := testutil.Instructor(t, h.db, "", true)
	off := testutil.Instructor(t, h.db, "", false)
	p := h.student(t, 3)

	soon, err := h.svc.Book(ctx, p, bookReq(in.ID, "2026-03-11", "10:00"))
	require.NoError(t, err)
	edge, err := h.svc.Book(ctx, p, bookReq(in.ID, "2026-03-11", "12:00"))
	require.NoError(t, err)
	later, err := h.svc.Book(ctx, p, bookReq(in.ID, "2026-03-20", "10:00"))
	require.NoError(t, err)

	move := func(id, instructor uuid.UUID, date, clock string) error {
		_, err := h.svc.Reschedule(ctx, p, RescheduleRequest{AppointmentID: id, InstructorID: instructor, Date: date, Time: clock})
		return err
	}

	assert.ErrorIs(t, move(soon.ID, in.ID, "2026-03-21", "10:00"), ErrRescheduleWindow)
	assert.NoError(t, move(edge.ID, in.ID, "2026-03-22", "10:00"), "exactly 24h ahead may still move")
	assert.ErrorIs(t, move(later.ID, in.ID, "2026-03-09", "10:00"), ErrPastDateTime)
	assert.ErrorIs(t, move(later.ID, off.ID, "2026-03-21", "10:00"), ErrInstructorUnavailable)
	assert.ErrorIs(t, move(later.ID, in.ID, "2026-03-21", "10:30"), scheduling.ErrNotASlot)
	assert.ErrorIs(t, move(uuid.New(), in.ID, "2026-03-21", "10:00"), ErrNotFound)

	_, err = h.svc.Cancel(ctx, p, later.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, move(later.ID, in.ID, "2026-03-21", "10:00"), ErrAlreadyCancelled)
}

func TestBook_ConcurrentSameSlot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	in := testutil.Instructor(t, h.db, "", true)
	students := []principal.Principal{h.student(t, 1), h.student(t, 1)}

	errs := make([]error, len(students))
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, p := range students {
		wg.Add(1)
		go func(i int, p principal.Principal) {
			defer wg.Done()
			<-start
			_, errs[i] = h.svc.Book(ctx, p, bookReq(in.ID, "2026-03-12", "10:00"))
		}(i, p)
	}
	close(start)
	wg.Wait()

	var won, lost int
	for i, err := range errs {
		switch {
		case err == nil:
			won++
			assert.Zero(t, h.balance(t, students[i]).AvailableCredits)
		case assert.ErrorIs(t, err, ErrSlotConflict):
			lost++
			assert.Equal(t, 1, h.balance(t, students[i]).AvailableCredits, "loser keeps the credit")
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)
	assert.EqualValues(t, 1, h.count(t, "instructor_id = ? AND status = ?", in.ID, model.StatusScheduled))
}

func TestComplete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	in := testutil.Instructor(t, h.db, "", true)
	other := testutil.Instructor(t, h.db, "", true)
	coach := principal.ForInstructor(in.UserID, in.ID)
	p := h.student(t, 2)

	a, err := h.svc.Book(ctx, p, bookReq(in.ID, "2026-03-14", "09:00"))
	require.NoError(t, err)
	b, err := h.svc.Book(ctx, p, bookReq(in.ID, "2026-03-14", "10:00"))
	require.NoError(t, err)

	_, err = h.svc.Complete(ctx, p, a.ID)
	assert.ErrorIs(t, err, ErrInstructorOnly)
	_, err = h.svc.Complete(ctx, principal.ForInstructor(other.UserID, other.ID), a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	done, err := h.svc.Complete(ctx, coach, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	_, err = h.svc.Cancel(ctx, p, b.ID)
	require.NoError(t, err)
	still, err := h.svc.Complete(ctx, coach, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, still.Status)

	assert.Equal(t, 0, h.balance(t, p).AvailableCredits)
}

func TestMarkNoShow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	in := testutil.Instructor(t, h.db, "", true)
	coach := principal.ForInstructor(in.UserID, in.ID)
	p := h.student(t, 1)

	a, err := h.svc.Book(ctx, p, bookReq(in.ID, "2026-03-10", "15:00"))
	require.NoError(t, err)

	_, err = h.svc.MarkNoShow(ctx, coach, a.ID)
	assert.ErrorIs(t, err, ErrLessonNotStarted)

	h.now = h.now.Add(4 * time.Hour)
	got, err := h.svc.MarkNoShow(ctx, coach, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNoShow, got.Status)

	_, err = h.svc.MarkNoShow(ctx, coach, a.ID)
	assert.ErrorIs(t, err, ErrNotScheduled)
}

func TestListsAndGet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	in := testutil.Instructor(t, h.db, "", true)
	coach := principal.ForInstructor(in.UserID, in.ID)
	p := h.student(t, 3)
	stranger := h.student(t, 0)

	for _, day := range []string{"2026-03-13", "2026-03-11", "2026-03-12"} {
		_, err := h.svc.Book(ctx, p, bookReq(in.ID, day, "09:00"))
		require.NoError(t, err)
	}

	mine, err := h.svc.ListForStudent(ctx, p)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.True(t, mine[0].ScheduledTime.After(mine[1].ScheduledTime))
	assert.True(t, mine[1].ScheduledTime.After(mine[2].ScheduledTime))

	theirs, err := h.svc.ListForInstructor(ctx, coach)
	require.NoError(t, err)
	require.Len(t, theirs, 3)
	assert.True(t, theirs[0].ScheduledTime.Before(theirs[1].ScheduledTime))
	require.NotNil(t, theirs[0].Student)
	require.NotNil(t, theirs[0].Student.User)

	_, err = h.svc.ListForStudent(ctx, coach)
	assert.ErrorIs(t, err, ErrStudentOnly)
	_, err = h.svc.ListForInstructor(ctx, p)
	assert.ErrorIs(t, err, ErrInstructorOnly)

	_, err = h.svc.Get(ctx, coach, mine[0].ID)
	require.NoError(t, err)
	_, err = h.svc.Get(ctx, principal.ForAdmin(uuid.New()), mine[0].ID)
	require.NoError(t, err)
	_, err = h.svc.Get(ctx, stranger, mine[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = h.svc.Get(ctx, principal.AnonymousPrincipal(), mine[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRescheduleNote(t *testing.T) {
	assert.Equal(t, "Rescheduled: sick", RescheduleNote("sick", ""))
	assert.Equal(t, "Rescheduled: sick | Previous notes: old", RescheduleNote("sick", "old"))
}
