package pipe

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/logger"
)

// Converter transforms a single value. args are the raw stage arguments.
type Converter func(value any, args []string) (any, error)

// NAryConverter transforms the elements of a collection.
type NAryConverter func(values []any, args []string) (any, error)

// Table identifies one of the two converter tables.
type Table string

const (
	TableUnary Table = "unary"
	TableNAry  Table = "n-ary"
)

// Provider contributes converters to a Registry.
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string
	// Install registers the provider's converters through b.
	Install(b *Binder) error
}

// ConverterInfo describes a registered converter.
type ConverterInfo struct {
	Name     string `json:"name"`
	Table    Table  `json:"table"`
	Provider string `json:"provider,omitempty"`
}

type unaryEntry struct {
	fn       Converter
	provider string
}

type naryEntry struct {
	fn       NAryConverter
	provider string
}

// Registry holds the unary and n-ary converter tables. Names are unique
// within a table; the same name may appear in both. A Registry is sealed
// when an Engine is built from it and rejects registration afterwards.
type Registry struct {
	mu     sync.RWMutex
	unary  map[string]unaryEntry
	nary   map[string]naryEntry
	sealed bool
	log    *logger.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		unary: make(map[string]unaryEntry),
		nary:  make(map[string]naryEntry),
		log:   logger.Get("pipe.registry"),
	}
}

// SetLogger replaces the logger used for registration events.
func (r *Registry) SetLogger(l *logger.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = l
}

// Register adds a unary converter. The name must not already be present in
// the unary table.
func (r *Registry) Register(name string, fn Converter) error {
	if err := checkEntry(name, fn == nil); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return errors.RegistrySealed(name)
	}
	if _, exists := r.unary[name]; exists {
		return errors.AlreadyRegistered(name, string(TableUnary))
	}
	r.unary[name] = unaryEntry{fn: fn}
	return nil
}

// RegisterNAry adds an n-ary converter. The name must not already be present
// in the n-ary table.
func (r *Registry) RegisterNAry(name string, fn NAryConverter) error {
	if err := checkEntry(name, fn == nil); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return errors.RegistrySealed(name)
	}
	if _, exists := r.nary[name]; exists {
		return errors.AlreadyRegistered(name, string(TableNAry))
	}
	r.nary[name] = naryEntry{fn: fn}
	return nil
}

// Install runs each provider's Install in order and commits its converters.
// A provider that fails leaves the registry unchanged. A converter from a
// later provider replaces one with the same name from an earlier provider.
func (r *Registry) Install(providers ...Provider) error {
	for _, p := range providers {
		if r.Sealed() {
			return errors.RegistrySealed(p.Name())
		}
		b := newBinder(p.Name())
		if err := p.Install(b); err != nil {
			return fmt.Errorf("installing provider %s: %w", p.Name(), err)
		}
		if err := r.commit(b); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) commit(b *Binder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return errors.RegistrySealed(b.provider)
	}

	for _, name := range b.unaryOrder {
		if prev, exists := r.unary[name]; exists {
			r.logShadowed(name, TableUnary, prev.provider, b.provider)
		}
		r.unary[name] = unaryEntry{fn: b.unary[name], provider: b.provider}
	}
	for _, name := range b.naryOrder {
		if prev, exists := r.nary[name]; exists {
			r.logShadowed(name, TableNAry, prev.provider, b.provider)
		}
		r.nary[name] = naryEntry{fn: b.nary[name], provider: b.provider}
	}

	r.log.Debug("provider installed", logger.Fields(
		logger.FieldProvider, b.provider,
		"unary", len(b.unaryOrder),
		"nary", len(b.naryOrder),
	))
	return nil
}

func (r *Registry) logShadowed(name string, table Table, previous, current string) {
	r.log.Debug("converter shadowed", logger.Fields(
		logger.FieldConverter, name,
		logger.FieldTable, string(table),
		"previous_provider", previous,
		logger.FieldProvider, current,
	))
}

// Unary looks up a converter in the unary table.
func (r *Registry) Unary(name string) (Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.unary[name]
	return e.fn, ok
}

// NAry looks up a converter in the n-ary table.
func (r *Registry) NAry(name string) (NAryConverter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.nary[name]
	return e.fn, ok
}

// Names returns the sorted converter names of one table.
func (r *Registry) Names(table Table) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	switch table {
	case TableUnary:
		names = make([]string, 0, len(r.unary))
		for name := range r.unary {
			names = append(names, name)
		}
	case TableNAry:
		names = make([]string, 0, len(r.nary))
		for name := range r.nary {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// List describes every registered converter, unary table first, each table
// sorted by name.
func (r *Registry) List() []ConverterInfo {
	var out []ConverterInfo
	for _, table := range []Table{TableUnary, TableNAry} {
		for _, name := range r.Names(table) {
			out = append(out, ConverterInfo{Name: name, Table: table, Provider: r.providerOf(name, table)})
		}
	}
	return out
}

func (r *Registry) providerOf(name string, table Table) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if table == TableUnary {
		return r.unary[name].provider
	}
	return r.nary[name].provider
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

func checkEntry(name string, nilFn bool) error {
	if name == "" {
		return errors.InvalidArgument("registry", "converter name must not be empty")
	}
	if nilFn {
		return errors.InvalidArgument("registry", fmt.Sprintf("converter %s has no function", name))
	}
	return nil
}

// Binder collects the converters of a single provider during Install.
// Registering the same name twice in one table is an error.
type Binder struct {
	provider   string
	unary      map[string]Converter
	nary       map[string]NAryConverter
	unaryOrder []string
	naryOrder  []string
}

func newBinder(provider string) *Binder {
	return &Binder{
		provider: provider,
		unary:    make(map[string]Converter),
		nary:     make(map[string]NAryConverter),
	}
}

// Provider returns the name of the provider being installed.
func (b *Binder) Provider() string { return b.provider }

// Register adds a unary converter.
func (b *Binder) Register(name string, fn Converter) error {
	if err := checkEntry(name, fn == nil); err != nil {
		return err
	}
	if _, exists := b.unary[name]; exists {
		return errors.AlreadyRegistered(name, string(TableUnary)).WithDetail(logger.FieldProvider, b.provider)
	}
	b.unary[name] = fn
	b.unaryOrder = append(b.unaryOrder, name)
	return nil
}

// RegisterNAry adds an n-ary converter.
func (b *Binder) RegisterNAry(name string, fn NAryConverter) error {
	if err := checkEntry(name, fn == nil); err != nil {
		return err
	}
	if _, exists := b.nary[name]; exists {
		return errors.AlreadyRegistered(name, string(TableNAry)).WithDetail(logger.FieldProvider, b.provider)
	}
	b.nary[name] = fn
	b.naryOrder = append(b.naryOrder, name)
	return nil
}
