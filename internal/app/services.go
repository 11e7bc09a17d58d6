package app

import (
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/udelar-dtx/dtx_backend/config"
	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	"github.com/udelar-dtx/dtx_backend/internal/domain/prescription"
	"github.com/udelar-dtx/dtx_backend/internal/service/auth"
	"github.com/udelar-dtx/dtx_backend/internal/service/enrollqr"
	"github.com/udelar-dtx/dtx_backend/internal/service/export"
	"github.com/udelar-dtx/dtx_backend/internal/service/patient"
	"github.com/udelar-dtx/dtx_backend/internal/service/roster"
	"github.com/udelar-dtx/dtx_backend/internal/service/session"
	"github.com/udelar-dtx/dtx_backend/internal/service/triage"
	"github.com/udelar-dtx/dtx_backend/internal/store"
	"github.com/udelar-dtx/dtx_backend/pkg/authorize"
	"github.com/udelar-dtx/dtx_backend/pkg/crypto"
	"github.com/udelar-dtx/dtx_backend/pkg/observability"
	pasetotoken "github.com/udelar-dtx/dtx_backend/pkg/paseto"
	s3pkg "github.com/udelar-dtx/dtx_backend/pkg/s3"
	"github.com/udelar-dtx/dtx_backend/pkg/util/codes"
	"github.com/udelar-dtx/dtx_backend/pkg/util/password"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideClock,
		ProvideCatalog,
		ProvideHasher,
		ProvideFieldCipher,
		ProvideTrialMetrics,
		ProvidePasetoManager,
		ProvideAuthService,
		ProvideTriageService,
		ProvidePatientService,
		ProvideRosterService,
		ProvideSessionService,
		ProvideExportService,
		ProvideEnrollQRService,
	),
)

func ProvideClock(cfg *config.Config) (clock.Clock, error) {
	return clock.New(cfg.Trial.Timezone)
}

func ProvideCatalog(cfg *config.Config) (*prescription.Catalog, error) {
	if cfg.Trial.CatalogPath == "" {
		return prescription.DefaultCatalog(), nil
	}
	slog.Info("loading exercise catalog", "path", cfg.Trial.CatalogPath)
	return prescription.LoadCatalog(cfg.Trial.CatalogPath)
}

func ProvideHasher(cfg *config.Config) *password.Hasher {
	return password.NewHasher(password.FromCentralConfig(cfg.Password))
}

func ProvideFieldCipher(cfg *config.Config) (*crypto.FieldCipher, error) {
	return crypto.NewFieldCipher(cfg.Authentication.EncryptionKey)
}

type MetricsParams struct {
	fx.In

	OTel *observability.Provider `optional:"true"`
}

// ProvideTrialMetrics returns nil when observability is off.
func ProvideTrialMetrics(p MetricsParams) (*observability.TrialMetrics, error) {
	if p.OTel == nil {
		return nil, nil
	}
	return observability.NewTrialMetrics()
}

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}

func ProvideAuthService(
	patients store.Patients,
	rdb *redis.Client,
	paseto *pasetotoken.Manager,
	hasher *password.Hasher,
	authz authorize.IAuthorization,
	cfg *config.Config,
) (auth.Service, error) {
	return auth.New(patients, rdb, paseto, hasher, authz, cfg)
}

func ProvideTriageService(records store.Records, clk clock.Clock, nc *nats.Conn, metrics *observability.TrialMetrics) triage.Service {
	return triage.New(records, clk, nc, metrics)
}

func ProvidePatientService(
	patients store.Patients,
	records store.Records,
	clk clock.Clock,
	hasher *password.Hasher,
	cipher *crypto.FieldCipher,
	cfg *config.Config,
) patient.Service {
	return patient.New(patients, records, clk, hasher, cipher, codes.FromCentralConfig(cfg.Trial), cfg.Trial.PhoneRegion)
}

func ProvideRosterService(records store.Records, clk clock.Clock) roster.Service {
	return roster.New(records, clk)
}

func ProvideSessionService(
	patients store.Patients,
	records store.Records,
	catalog *prescription.Catalog,
	clk clock.Clock,
	metrics *observability.TrialMetrics,
) session.Service {
	return session.New(patients, records, catalog, clk, metrics)
}

func ProvideExportService(records store.Records, objects s3pkg.ObjectStore, clk clock.Clock) export.Service {
	return export.New(records, objects, clk)
}

// ProvideEnrollQRService returns nil without an app URL; the route is then
// not registered.
func ProvideEnrollQRService(cfg *config.Config) (enrollqr.Service, error) {
	if cfg.Trial.AppURL == "" {
		return nil, nil
	}
	return enrollqr.New(cfg.Trial.AppURL, cfg.Trial.QRCacheSize)
}
