package procwait

import "github.com/giantswarm/procwait/internal/core"

// waiterConfig holds configuration for a Waiter. This unexported type wraps
// core.WaiterConfig via embedding, keeping internal/core types out of the
// public API signature while avoiding field-by-field duplication.
type waiterConfig struct {
	core.WaiterConfig

	// poolSize, when positive, asks toCoreConfig for a dedicated pool.
	poolSize int
}

// defaultWaiterConfig returns a waiterConfig on the shared default pool.
func defaultWaiterConfig() waiterConfig {
	return waiterConfig{WaiterConfig: core.WaiterConfig{Pool: DefaultPool()}}
}

// toCoreConfig returns the embedded core.WaiterConfig, creating the
// dedicated pool requested by WithPoolSize.
func (c waiterConfig) toCoreConfig() core.WaiterConfig {
	cfg := c.WaiterConfig
	if c.poolSize > 0 {
		cfg.Pool = core.NewPool(c.poolSize)
	}
	return cfg
}
