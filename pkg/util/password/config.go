package password

import "github.com/udelar-dtx/dtx_backend/config"

// lowMemoryKiB caps memory on constrained hosts.
const lowMemoryKiB = 32 * 1024

// FromCentralConfig builds hashing parameters from the password section.
// Zero values fall back to DefaultParams.
func FromCentralConfig(c config.PasswordConfig) *Params {
	p := DefaultParams()
	if c.MemoryKiB > 0 {
		p.Memory = c.MemoryKiB
	}
	if c.Iterations > 0 {
		p.Iterations = c.Iterations
	}
	if c.Parallelism > 0 {
		p.Parallelism = c.Parallelism
	}
	if c.SaltLength > 0 {
		p.SaltLength = c.SaltLength
	}
	if c.KeyLength > 0 {
		p.KeyLength = c.KeyLength
	}
	if c.LowMemoryMode && p.Memory > lowMemoryKiB {
		p.Memory = lowMemoryKiB
		p.Iterations++
	}
	return p
}
