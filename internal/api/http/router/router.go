package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/config"
	"github.com/Alijeyrad/drivingschool_backend/internal/api/http/handler"
	"github.com/Alijeyrad/drivingschool_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/account"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/appointment"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/cart"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/catalog"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/community"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/dashboard"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/purchase"
	"github.com/Alijeyrad/drivingschool_backend/internal/service/scheduling"
	"github.com/Alijeyrad/drivingschool_backend/pkg/authorize"
	"github.com/Alijeyrad/drivingschool_backend/pkg/observability"
	pasetotoken "github.com/Alijeyrad/drivingschool_backend/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg            *config.Config
	DB             *gorm.DB
	Redis          *redis.Client `optional:"true"`
	Auth           authorize.IAuthorization
	PasetoMgr      *pasetotoken.Manager
	OTel           *observability.Provider `optional:"true"`
	AccountSvc     account.Service
	CatalogSvc     catalog.Service
	CartSvc        cart.Service
	PurchaseSvc    purchase.Service
	SchedulingSvc  scheduling.Service
	AppointmentSvc appointment.Service
	DashboardSvc   dashboard.Service
	CommunitySvc   community.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	g := guards{
		auth:      middleware.AuthRequired(r.p.PasetoMgr, r.p.AccountSvc),
		optional:  middleware.OptionalAuth(r.p.PasetoMgr, r.p.AccountSvc),
		principal: middleware.ResolvePrincipal(r.p.AccountSvc),
		perm: func(res authorize.Resource, act authorize.Action) fiber.Handler {
			return middleware.RequirePermission(r.p.Auth, res, act)
		},
	}

	// 3. Initialize Handlers
	authH := handler.NewAuthHandler(r.p.AccountSvc)
	profileH := handler.NewProfileHandler(r.p.AccountSvc)
	planH := handler.NewPlanHandler(r.p.CatalogSvc)
	instructorH := handler.NewInstructorHandler(r.p.AccountSvc, r.p.SchedulingSvc)
	cartH := handler.NewCartHandler(r.p.CartSvc, r.p.PurchaseSvc)
	purchaseH := handler.NewPurchaseHandler(r.p.PurchaseSvc)
	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc)
	dashboardH := handler.NewDashboardHandler(r.p.DashboardSvc)
	communityH := handler.NewCommunityHandler(r.p.CommunitySvc)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerAuthRoutes(api, authH, profileH, g)
	r.registerCatalogRoutes(api, planH, instructorH, g)
	r.registerPurchaseRoutes(api, cartH, purchaseH, g)
	r.registerAppointmentRoutes(api, appointmentH, g)
	r.registerPortalRoutes(api, dashboardH, g)
	r.registerCommunityRoutes(api, communityH, g)
}

// guards bundles the route middlewares. auth and optional must be followed
// by principal; perm must come after principal.
type guards struct {
	auth      fiber.Handler
	optional  fiber.Handler
	principal fiber.Handler
	perm      func(authorize.Resource, authorize.Action) fiber.Handler
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return r.ready(c.Context()) },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.OTel != nil && r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(r.p.OTel.MetricsHandler()))
	}
}

// ready pings the database and, when configured, Redis.
func (r *Router) ready(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	sqlDB, err := r.p.DB.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		return false
	}
	if r.p.Redis != nil && r.p.Redis.Ping(ctx).Err() != nil {
		return false
	}
	return true
}
