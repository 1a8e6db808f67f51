package script

import (
	"fmt"
	"time"

	"github.com/kbukum/convpipe/config"
	"github.com/kbukum/convpipe/util"
)

// Limit names reported in RESOURCE_LIMIT_EXCEEDED details.
const (
	LimitTimeout   = "timeout"
	LimitMemory    = "memory"
	LimitCallDepth = "call_depth"
)

const (
	DefaultTimeout      = 4 * time.Second
	DefaultMaxMemory    = 32 << 20
	DefaultMaxCallDepth = 256
)

// Limits bounds a single script invocation. A zero field disables that limit.
type Limits struct {
	// Timeout is the wall-clock ceiling of one call.
	Timeout time.Duration
	// MaxMemory is the number of bytes one call may allocate.
	MaxMemory int64
	// MaxCallDepth is the deepest script call stack allowed.
	MaxCallDepth int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		Timeout:      DefaultTimeout,
		MaxMemory:    DefaultMaxMemory,
		MaxCallDepth: DefaultMaxCallDepth,
	}
}

// LimitsFromConfig converts configured limits. An unparseable max_memory
// falls back to DefaultMaxMemory.
func LimitsFromConfig(c config.LimitsConfig) Limits {
	return Limits{
		Timeout:      c.Timeout,
		MaxMemory:    util.ParseSize(c.MaxMemory, DefaultMaxMemory),
		MaxCallDepth: c.MaxCallDepth,
	}
}

func (l Limits) String() string {
	return fmt.Sprintf("timeout=%s memory=%dB depth=%d", l.Timeout, l.MaxMemory, l.MaxCallDepth)
}
