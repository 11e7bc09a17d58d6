package constants

const (
	AppName = "dtx"

	ConfigName   = "config"
	ConfigFormat = "yaml"

	// EnvPrefix prefixes environment overrides, e.g. DTX_DATABASE_HOST.
	EnvPrefix = "DTX"

	// AlertAppName signs staff notifications.
	AlertAppName = "DTx Oncología"
)

// NATS subjects.
const (
	SubjectTriageRed       = "dtx.triage.red"
	SubjectTriageRedPrefix = SubjectTriageRed + "."
)
