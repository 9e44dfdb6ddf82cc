package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/testutil"
	"github.com/Alijeyrad/drivingschool_backend/pkg/email"
	"github.com/Alijeyrad/drivingschool_backend/pkg/logs"
	"github.com/Alijeyrad/drivingschool_backend/pkg/sms"
)

type fakeMail struct {
	mu      sync.Mutex
	enabled bool
	err     error
	sent    []email.Message
}

func (f *fakeMail) Send(_ context.Context, m email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}
func (f *fakeMail) Enabled() bool        { return f.enabled }
func (f *fakeMail) AdminAddress() string { return "admin@example.com" }

type fakeSMS struct {
	mu      sync.Mutex
	enabled bool
	notices []sms.Notice
	params  []map[string]string
}

func (f *fakeSMS) SendNotice(_ context.Context, _ string, n sms.Notice, p map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, n)
	f.params = append(f.params, p)
	return nil
}
func (f *fakeSMS) IsEnabled() bool { return f.enabled }

func seedAppointment(t *testing.T, db *gorm.DB, phone string) (*model.Appointment, Event) {
	t.Helper()
	st := testutil.Student(t, db, 1)
	if phone != "" {
		require.NoError(t, db.Model(st).Update("phone", phone).Error)
	}
	in := testutil.Instructor(t, db, "mohommad", true)
	at := time.Date(2026, 5, 4, 14, 0, 0, 0, time.UTC)
	appt := &model.Appointment{
		StudentID: st.ID, InstructorID: in.ID, ScheduledTime: at,
		Status: model.StatusScheduled, CreditsUsed: 1, LessonType: model.LessonBeginner,
	}
	require.NoError(t, db.Create(appt).Error)
	return appt, Event{Type: EventBooked, AppointmentID: appt.ID, StudentID: st.ID, InstructorID: in.ID, ScheduledTime: at}
}

func deliveryLogs(t *testing.T, db *gorm.DB) map[model.NotificationChannel]model.NotificationLog {
	t.Helper()
	var rows []model.NotificationLog
	require.NoError(t, db.Find(&rows).Error)
	out := map[model.NotificationChannel]model.NotificationLog{}
	for _, r := range rows {
		out[r.Channel] = r
	}
	return out
}

func TestEventSubject(t *testing.T) {
	id := uuid.MustParse("0191e5a0-0000-7000-8000-000000000001")
	e := Event{Type: EventCancelled, AppointmentID: id}
	assert.Equal(t, "drivingschool.appointment.cancelled."+id.String(), e.Subject())
}

func TestDecodeEvent(t *testing.T) {
	_, err := DecodeEvent([]byte(`{"type":"appointment.exploded"}`))
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, err = DecodeEvent([]byte(`not json`))
	assert.Error(t, err)

	e, err := DecodeEvent([]byte(`{"type":"appointment.booked","appointment_id":"0191e5a0-0000-7000-8000-000000000001"}`))
	require.NoError(t, err)
	assert.Equal(t, EventBooked, e.Type)
}

func TestDeliver_SendsAndLogs(t *testing.T) {
	db := testutil.NewDB(t)
	mail := &fakeMail{enabled: true}
	text := &fakeSMS{enabled: true}
	svc := New(db, text, mail, time.UTC, logs.Discard())

	_, ev := seedAppointment(t, db, "+15551234567")
	require.NoError(t, svc.Deliver(context.Background(), ev))

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "Your driving lesson is booked", mail.sent[0].Subject)
	assert.Contains(t, mail.sent[0].TextBody, "May 04, 2026 at 02:00 PM")
	assert.Contains(t, mail.sent[0].TextBody, "Mohommad")

	require.Equal(t, []sms.Notice{sms.NoticeLessonBooked}, text.notices)
	assert.Equal(t, "Mohommad", text.params[0]["instructor"])

	rows := deliveryLogs(t, db)
	assert.Equal(t, model.DeliverySent, rows[model.ChannelEmail].Status)
	assert.Equal(t, model.DeliverySent, rows[model.ChannelSMS].Status)
	assert.Equal(t, "+15551234567", rows[model.ChannelSMS].Recipient)
	assert.Contains(t, string(rows[model.ChannelSMS].Payload), "appointment.booked")
}

func TestDeliver_DisabledChannelsAreSkipped(t *testing.T) {
	db := testutil.NewDB(t)
	svc := New(db, &fakeSMS{}, &fakeMail{}, nil, logs.Discard())

	_, ev := seedAppointment(t, db, "")
	require.NoError(t, svc.Deliver(context.Background(), ev))

	rows := deliveryLogs(t, db)
	assert.Equal(t, model.DeliverySkipped, rows[model.ChannelEmail].Status)
	assert.Equal(t, model.DeliverySkipped, rows[model.ChannelSMS].Status)
}

func TestDeliver_FailureIsLoggedAndReturned(t *testing.T) {
	db := testutil.NewDB(t)
	boom := errors.New("smtp down")
	svc := New(db, nil, &fakeMail{enabled: true, err: boom}, nil, logs.Discard())

	_, ev := seedAppointment(t, db, "")
	err := svc.Deliver(context.Background(), ev)
	assert.ErrorIs(t, err, boom)

	rows := deliveryLogs(t, db)
	assert.Equal(t, model.DeliveryFailed, rows[model.ChannelEmail].Status)
	assert.Equal(t, "smtp down", rows[model.ChannelEmail].Error)
	assert.Equal(t, model.DeliverySkipped, rows[model.ChannelSMS].Status)
}

func TestDeliver_Errors(t *testing.T) {
	db := testutil.NewDB(t)
	svc := New(db, nil, nil, nil, logs.Discard())

	err := svc.Deliver(context.Background(), Event{Type: "nope"})
	assert.ErrorIs(t, err, ErrUnknownEvent)

	err = svc.Deliver(context.Background(), Event{Type: EventBooked, AppointmentID: uuid.New()})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

type recordingService struct {
	got chan Event
}

func (r *recordingService) Deliver(_ context.Context, e Event) error {
	r.got <- e
	return nil
}

func TestDirectPublisher_DeliversAfterRequestEnds(t *testing.T) {
	rec := &recordingService{got: make(chan Event, 1)}
	pub := NewDirectPublisher(rec, logs.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	ev := Event{Type: EventCancelled, AppointmentID: uuid.New()}
	pub.Publish(ctx, ev)
	cancel()

	select {
	case got := <-rec.got:
		assert.Equal(t, ev, got)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}
