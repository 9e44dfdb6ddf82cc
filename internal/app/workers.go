package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/drivingschool_backend/internal/service/notification"
)

// WorkerModule registers the NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc       fx.Lifecycle
	NC       *nats.Conn `optional:"true"`
	NotifSvc notification.Service
	Logger   *slog.Logger
}

const deliveryTimeout = 30 * time.Second

func RegisterWorkers(p WorkerParams) {
	if p.NC == nil {
		return
	}

	var sub *nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			sub, err = startNotificationWorker(p.NC, p.NotifSvc, p.Logger)
			return err
		},
		OnStop: func(ctx context.Context) error {
			if sub == nil {
				return nil
			}
			return sub.Unsubscribe()
		},
	})
}

// ---------------------------------------------------------------------------
// notification_worker
// ---------------------------------------------------------------------------

// startNotificationWorker delivers every appointment event. Members of the
// queue group share the load, so each event is delivered once.
func startNotificationWorker(nc *nats.Conn, svc notification.Service, logger *slog.Logger) (*nats.Subscription, error) {
	log := logger.With("worker", "notification")

	sub, err := nc.QueueSubscribe(notification.SubjectAppointments, "notification-worker", func(msg *nats.Msg) {
		ev, err := notification.DecodeEvent(msg.Data)
		if err != nil {
			log.Warn("dropping malformed event", "subject", msg.Subject, "error", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()

		if err := svc.Deliver(ctx, ev); err != nil {
			log.Warn("delivery incomplete",
				"event", ev.Type, "appointment_id", ev.AppointmentID, "error", err)
		}
	})
	if err != nil {
		return nil, err
	}

	log.Info("started", "subject", notification.SubjectAppointments)
	return sub, nil
}
