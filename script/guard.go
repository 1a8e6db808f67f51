package script

import (
	"runtime/metrics"
	"sync"
	"time"

	"github.com/kbukum/convpipe/errors"
)

const (
	heapAllocsMetric = "/gc/heap/allocs:bytes"

	// DefaultSampleInterval is how often a Guard samples allocations.
	DefaultSampleInterval = 5 * time.Millisecond
)

// Guard enforces the timeout and memory Limits around one call. The call
// depth limit is enforced by the interpreter itself.
//
// Allocations are sampled from the process-wide heap counter, so a call is
// charged for whatever the process allocates while it runs.
type Guard struct {
	provider string
	limits   Limits
	interval time.Duration
}

// NewGuard creates a Guard reporting limit failures for provider.
func NewGuard(provider string, limits Limits) *Guard {
	return &Guard{provider: provider, limits: limits, interval: DefaultSampleInterval}
}

// Limits returns the enforced limits.
func (g *Guard) Limits() Limits { return g.limits }

// Run calls fn. When a limit trips, stop is called once with the limit name
// and must make fn return promptly. Run then reports RESOURCE_LIMIT_EXCEEDED
// with fn's error as the cause. Otherwise fn's error is returned as is.
func (g *Guard) Run(stop func(limit string), fn func() error) error {
	if g.limits.Timeout <= 0 && g.limits.MaxMemory <= 0 {
		return fn()
	}

	var (
		once    sync.Once
		tripped string
		wg      sync.WaitGroup
	)
	trip := func(limit string) {
		once.Do(func() {
			tripped = limit
			stop(limit)
		})
	}

	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		g.watch(done, trip)
	}()

	err := fn()
	close(done)
	wg.Wait()

	if tripped != "" {
		return errors.ResourceLimitExceeded(g.provider, tripped, err)
	}
	return err
}

func (g *Guard) watch(done <-chan struct{}, trip func(string)) {
	var deadline <-chan time.Time
	if g.limits.Timeout > 0 {
		timer := time.NewTimer(g.limits.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	var (
		tick <-chan time.Time
		base uint64
	)
	if g.limits.MaxMemory > 0 {
		base = heapAllocs()
		ticker := time.NewTicker(g.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-done:
			return
		case <-deadline:
			trip(LimitTimeout)
			return
		case <-tick:
			if heapAllocs()-base > uint64(g.limits.MaxMemory) {
				trip(LimitMemory)
				return
			}
		}
	}
}

// LimitExceeded reports a limit the interpreter detected itself.
func (g *Guard) LimitExceeded(limit string, cause error) error {
	return errors.ResourceLimitExceeded(g.provider, limit, cause)
}

func heapAllocs() uint64 {
	sample := []metrics.Sample{{Name: heapAllocsMetric}}
	metrics.Read(sample)
	if sample[0].Value.Kind() != metrics.KindUint64 {
		return 0
	}
	return sample[0].Value.Uint64()
}
