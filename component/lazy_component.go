package component

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/convpipe/logger"
)

// BaseLazyComponent is a Component whose setup runs on first Start or
// Initialize. It suits resources that should only be acquired when the
// process actually serves work, such as telemetry exporters.
type BaseLazyComponent struct {
	name        string
	mu          sync.RWMutex
	initialized bool
	lastError   error
	initializer func(ctx context.Context) error
	healthCheck func(ctx context.Context) error
	closer      func(ctx context.Context) error
	description *Description
}

// NewBaseLazyComponent creates a lazy component with the given initializer.
func NewBaseLazyComponent(name string, initializer func(context.Context) error) *BaseLazyComponent {
	return &BaseLazyComponent{
		name:        name,
		initializer: initializer,
	}
}

// Name returns the component name.
func (b *BaseLazyComponent) Name() string {
	return b.name
}

// Initialize performs thread-safe lazy initialization using double-check locking.
func (b *BaseLazyComponent) Initialize(ctx context.Context) error {
	b.mu.RLock()
	if b.initialized && b.lastError == nil {
		b.mu.RUnlock()
		return nil
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	// Double-check after acquiring write lock
	if b.initialized && b.lastError == nil {
		return nil
	}

	if b.initializer == nil {
		return fmt.Errorf("no initializer for component: %s", b.name)
	}

	if err := b.initializer(ctx); err != nil {
		b.lastError = err
		return fmt.Errorf("failed to initialize %s: %w", b.name, err)
	}

	b.initialized = true
	b.lastError = nil

	logger.Debug("Lazy component initialized", logger.Fields(logger.FieldComponent, b.name))
	return nil
}

// IsInitialized returns whether the component has been successfully initialized.
func (b *BaseLazyComponent) IsInitialized() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.initialized && b.lastError == nil
}

// HealthCheck verifies the component is initialized and optionally runs a custom check.
func (b *BaseLazyComponent) HealthCheck(ctx context.Context) error {
	if !b.IsInitialized() {
		return fmt.Errorf("component %s not initialized", b.name)
	}
	if b.healthCheck != nil {
		return b.healthCheck(ctx)
	}
	return nil
}

// Close shuts down the component and marks it as uninitialized.
func (b *BaseLazyComponent) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closer != nil && b.initialized {
		err := b.closer(ctx)
		b.initialized = false
		return err
	}
	b.initialized = false
	return nil
}

// Start implements Component by initializing.
func (b *BaseLazyComponent) Start(ctx context.Context) error {
	return b.Initialize(ctx)
}

// Stop implements Component by closing.
func (b *BaseLazyComponent) Stop(ctx context.Context) error {
	return b.Close(ctx)
}

// Health implements Component on top of HealthCheck.
func (b *BaseLazyComponent) Health(ctx context.Context) Health {
	if err := b.HealthCheck(ctx); err != nil {
		return Health{Name: b.name, Status: StatusUnhealthy, Message: err.Error()}
	}
	return Health{Name: b.name, Status: StatusHealthy}
}

// Describe implements Describable when a description was set.
func (b *BaseLazyComponent) Describe() Description {
	if b.description == nil {
		return Description{Name: b.name}
	}
	return *b.description
}

// WithHealthCheck sets a custom health check function.
func (b *BaseLazyComponent) WithHealthCheck(fn func(context.Context) error) *BaseLazyComponent {
	b.healthCheck = fn
	return b
}

// WithCloser sets a custom close function.
func (b *BaseLazyComponent) WithCloser(fn func(context.Context) error) *BaseLazyComponent {
	b.closer = fn
	return b
}

// WithDescription sets the startup summary entry.
func (b *BaseLazyComponent) WithDescription(d Description) *BaseLazyComponent {
	b.description = &d
	return b
}
