package router

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/udelar-dtx/dtx_backend/config"
	"github.com/udelar-dtx/dtx_backend/internal/api/http/handler"
	"github.com/udelar-dtx/dtx_backend/internal/api/http/middleware"
	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	"github.com/udelar-dtx/dtx_backend/internal/service/auth"
	"github.com/udelar-dtx/dtx_backend/internal/service/enrollqr"
	"github.com/udelar-dtx/dtx_backend/internal/service/export"
	"github.com/udelar-dtx/dtx_backend/internal/service/patient"
	"github.com/udelar-dtx/dtx_backend/internal/service/roster"
	"github.com/udelar-dtx/dtx_backend/internal/service/session"
	"github.com/udelar-dtx/dtx_backend/internal/service/triage"
	"github.com/udelar-dtx/dtx_backend/pkg/authorize"
	pasetotoken "github.com/udelar-dtx/dtx_backend/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg         *config.Config
	Redis       *redis.Client `optional:"true"`
	Auth        authorize.IAuthorization
	Clock       clock.Clock
	AuthSvc     auth.Service
	TriageSvc   triage.Service
	PatientSvc  patient.Service
	RosterSvc   roster.Service
	SessionSvc  session.Service
	ExportSvc   export.Service
	EnrollQRSvc enrollqr.Service `optional:"true"`
	PasetoMgr   *pasetotoken.Manager
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) error {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	sc := r.p.Cfg.Authentication.SessionCache
	cache, err := middleware.NewSessionCache(sc.Size, time.Duration(sc.TTLSeconds)*time.Second)
	if err != nil {
		return err
	}
	authRequired := middleware.AuthRequired(r.p.PasetoMgr, r.p.AuthSvc, cache)

	loginLimit := func(c fiber.Ctx) error { return c.Next() }
	if r.p.Redis != nil && r.p.Cfg.IsProduction() {
		loginLimit = middleware.NewLoginLimiter(r.p.Redis, r.p.Cfg.Server.LoginRateLimit.RequestsPerMinute)
	}

	// Permission helper
	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	// 3. Initialize Handlers
	authH := handler.NewAuthHandler(r.p.AuthSvc, cache)
	triageH := handler.NewTriageHandler(r.p.TriageSvc)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerAuthRoutes(api, authH, authRequired, loginLimit, requirePerm)
	r.registerTriageRoutes(api, triageH, authRequired, requirePerm)
	r.registerStaffRoutes(api, staffHandlers{
		roster:   handler.NewRosterHandler(r.p.RosterSvc),
		patient:  handler.NewPatientHandler(r.p.PatientSvc),
		session:  handler.NewSessionHandler(r.p.SessionSvc),
		export:   handler.NewExportHandler(r.p.ExportSvc, r.p.Clock),
		enrollQR: r.enrollQRHandler(),
	}, authRequired, requirePerm)

	return nil
}

func (r *Router) enrollQRHandler() *handler.EnrollQRHandler {
	if r.p.EnrollQRSvc == nil {
		return nil
	}
	return handler.NewEnrollQRHandler(r.p.EnrollQRSvc)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return authorize.IsPolicyHealthy() },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
