package app

import (
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/config"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/account"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/appointment"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/cart"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/catalog"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/community"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/dashboard"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/notification"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/purchase"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/scheduling"
	"github.com/Alijeyrad/drivingschool_backend/pkg/crypto"
	"github.com/Alijeyrad/drivingschool_backend/pkg/email"
	"github.com/Alijeyrad/drivingschool_backend/pkg/observability"
	pasetotoken "github.com/Alijeyrad/drivingschool_backend/pkg/paseto"
	"github.com/Alijeyrad/drivingschool_backend/pkg/payment"
	s3pkg "github.com/Alijeyrad/drivingschool_backend/pkg/s3"
	"github.com/Alijeyrad/drivingschool_backend/pkg/sms"
	"github.com/Alijeyrad/drivingschool_backend/pkg/util/codes"
	"github.com/Alijeyrad/drivingschool_backend/pkg/util/password"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideAccountService,
		ProvideCatalogService,
		ProvideCartService,
		ProvidePurchaseService,
		ProvideSchedulingService,
		ProvideNotificationService,
		ProvidePublisher,
		ProvideAppointmentService,
		ProvideDashboardService,
		ProvideCommunityService,
	),
)

func ProvideAccountService(
	db *gorm.DB,
	rdb *redis.Client,
	tokens *pasetotoken.Manager,
	cfg *config.Config,
	logger *slog.Logger,
) (account.Service, error) {
	cipher, err := crypto.NewCipher(cfg.Authentication.EncryptionKey)
	if err != nil {
		return nil, err
	}
	return account.New(db, account.NewRedisSessionStore(rdb), tokens, account.Options{
		Hasher:      password.NewHasher(password.FromCentralConfig(cfg.Password)),
		Cipher:      cipher,
		PhoneRegion: cfg.SMS.Region,
		Logger:      logger,
	}), nil
}

func ProvideCatalogService(db *gorm.DB, logger *slog.Logger) catalog.Service {
	return catalog.New(db, logger)
}

func ProvideCartService(db *gorm.DB, logger *slog.Logger) cart.Service {
	return cart.New(db, logger)
}

func ProvidePurchaseService(
	db *gorm.DB,
	carts cart.Service,
	processor payment.Processor,
	metrics *observability.BookingMetrics,
	logger *slog.Logger,
) purchase.Service {
	return purchase.New(db, carts, processor, metrics, logger)
}

func ProvideSchedulingService(db *gorm.DB, cfg *config.Config) scheduling.Service {
	return scheduling.New(db, scheduling.ConfigFrom(cfg.Booking))
}

func ProvideNotificationService(
	db *gorm.DB,
	smsSender sms.Sender,
	mail email.Sender,
	cfg *config.Config,
	logger *slog.Logger,
) notification.Service {
	return notification.New(db, smsSender, mail, cfg.Booking.Location(), logger)
}

// ProvidePublisher sends appointment events over NATS when connected and
// delivers them in-process otherwise.
func ProvidePublisher(
	cfg *config.Config,
	nc *nats.Conn,
	svc notification.Service,
	logger *slog.Logger,
) notification.Publisher {
	switch {
	case !cfg.Booking.Notifications:
		return notification.NopPublisher{}
	case nc != nil:
		return notification.NewNATSPublisher(nc, logger)
	default:
		return notification.NewDirectPublisher(svc, logger)
	}
}

func ProvideAppointmentService(
	db *gorm.DB,
	schedule scheduling.Service,
	publisher notification.Publisher,
	metrics *observability.BookingMetrics,
	logger *slog.Logger,
) appointment.Service {
	return appointment.New(db, schedule, publisher, metrics, logger)
}

func ProvideDashboardService(
	db *gorm.DB,
	appointments appointment.Service,
	carts cart.Service,
	logger *slog.Logger,
) dashboard.Service {
	return dashboard.New(db, appointments, carts, logger)
}

func ProvideCommunityService(
	db *gorm.DB,
	store s3pkg.ObjectStore,
	mail email.Sender,
	metrics *observability.BookingMetrics,
	cfg *config.Config,
	logger *slog.Logger,
) community.Service {
	return community.New(db, community.Options{
		Store:       store,
		Mail:        mail,
		Codes:       codes.NewGenerator(codes.FromCentralConfig(cfg.Codes)),
		Metrics:     metrics,
		PhoneRegion: cfg.SMS.Region,
		Logger:      logger,
	})
}
