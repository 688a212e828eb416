package functions

import (
	"context"
	"math/rand/v2"
	"sort"
	"time"

	"machinehub/statusboard/pkg/registry"
)

// Function names.
const (
	NameAlives  = "alives"
	NameDevices = "devices"
	NameDeads   = "deads"
	NameRandom  = "random"
	NameReport  = "report"
	NamePlus    = "plus"
	NameMinus   = "minus"
	NameTimes   = "times"
	NameDivide  = "divide"
)

const (
	// DefaultAliveWindow is how recent a heartbeat must be for a device to
	// count as alive.
	DefaultAliveWindow = 24 * time.Hour

	// DefaultMaxOutput caps the result of string repetition in bytes.
	DefaultMaxOutput = 64 * 1024
)

// Func is the implementation of a template function. args always has
// exactly Entry.Arity elements.
type Func func(ctx context.Context, args []string) (string, error)

// Entry is one row of the function table.
type Entry struct {
	Name  string
	Arity int
	Doc   string
	Call  Func
}

// Config holds the collaborators and limits the functions need.
type Config struct {
	// Devices backs alives, devices, deads, random and report.
	// A nil value behaves like an empty registry.
	Devices registry.Reader

	// Now returns the current time. Default: time.Now
	Now func() time.Time

	// AliveWindow is the heartbeat recency threshold. Default: 24h
	AliveWindow time.Duration

	// MaxOutput caps repetition results in bytes. Default: 64KiB
	MaxOutput int

	// IntN returns a uniform random int in [0, n). Default: math/rand/v2 IntN
	IntN func(n int) int
}

func (c *Config) applyDefaults() {
	if c.Devices == nil {
		c.Devices = registry.NewMemoryRegistry()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.AliveWindow <= 0 {
		c.AliveWindow = DefaultAliveWindow
	}
	if c.MaxOutput <= 0 {
		c.MaxOutput = DefaultMaxOutput
	}
	if c.IntN == nil {
		c.IntN = rand.IntN
	}
}

// Registry is the immutable function table. It is safe for concurrent use.
type Registry struct {
	entries map[string]*Entry
	names   []string
}

// New builds the function table.
func New(cfg Config) *Registry {
	cfg.applyDefaults()

	d := &deviceFuncs{
		devices: cfg.Devices,
		now:     cfg.Now,
		window:  cfg.AliveWindow,
		intN:    cfg.IntN,
	}
	a := &arith{maxOutput: cfg.MaxOutput}

	entries := []*Entry{
		{Name: NameAlives, Arity: 0, Doc: "number of devices with a recent heartbeat", Call: d.alives},
		{Name: NameDevices, Arity: 0, Doc: "number of registered devices", Call: d.count},
		{Name: NameDeads, Arity: 0, Doc: "number of devices without a recent heartbeat", Call: d.deads},
		{Name: NameRandom, Arity: 0, Doc: "name of a randomly chosen device", Call: d.random},
		{Name: NameReport, Arity: 1, Doc: "latest report of the named device", Call: d.report},
		{Name: NamePlus, Arity: 2, Doc: "sum, or concatenation of non-numbers", Call: binary(a.plus)},
		{Name: NameMinus, Arity: 2, Doc: "difference, or NaN", Call: binary(a.minus)},
		{Name: NameTimes, Arity: 2, Doc: "product, repetition, or NaN", Call: binary(a.times)},
		{Name: NameDivide, Arity: 2, Doc: "quotient, or NaN", Call: binary(a.divide)},
	}

	r := &Registry{
		entries: make(map[string]*Entry, len(entries)),
		names:   make([]string, 0, len(entries)),
	}
	for _, e := range entries {
		r.entries[e.Name] = e
		r.names = append(r.names, e.Name)
	}
	sort.Strings(r.names)
	return r
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names returns all function names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Entries returns all entries in name order.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.entries[name])
	}
	return out
}

func binary(fn func(a, b string) string) Func {
	return func(_ context.Context, args []string) (string, error) {
		return fn(args[0], args[1]), nil
	}
}
