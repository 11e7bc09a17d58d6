package codes

import "github.com/udelar-dtx/dtx_backend/config"

// Config holds the PIN policy of the trial.
type Config struct {
	// PINLength is used when staff leave the PIN empty at registration.
	PINLength int
}

func DefaultConfig() Config {
	return Config{PINLength: MinPINLength}
}

func FromCentralConfig(c config.TrialConfig) Config {
	if c.PINLength < MinPINLength || c.PINLength > MaxPINLength {
		return DefaultConfig()
	}
	return Config{PINLength: c.PINLength}
}
