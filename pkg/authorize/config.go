package authorize

import "github.com/udelar-dtx/dtx_backend/config"

// Config holds configuration for the authorization system
type Config struct {
	// CasbinModelPath is the path to the Casbin model configuration file
	CasbinModelPath string

	// EnableAudit enables audit logging for all authorization decisions
	EnableAudit bool

	// PolicySyncEnabled enables the Postgres LISTEN/NOTIFY watcher
	PolicySyncEnabled bool
}

func DefaultConfig() Config {
	return Config{
		CasbinModelPath:   "config/casbin_model.conf",
		EnableAudit:       true,
		PolicySyncEnabled: true,
	}
}

// FromCentralConfig converts central config.AuthorizationConfig to package Config
func FromCentralConfig(c config.AuthorizationConfig) Config {
	out := Config{
		CasbinModelPath:   c.CasbinModelPath,
		EnableAudit:       c.EnableAudit,
		PolicySyncEnabled: c.PolicySyncEnabled,
	}
	if out.CasbinModelPath == "" {
		out.CasbinModelPath = DefaultConfig().CasbinModelPath
	}
	return out
}
