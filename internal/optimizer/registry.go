package optimizer

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/mapfuse/internal/ctxlog"
)

// Module is the interface that optimizer packages implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Factory creates a fresh pass instance.
type Factory func() Optimizer

// Registry holds all registered passes for a single application instance.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates and initializes a new Registry instance.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a pass factory under name. Registering the same name twice
// replaces the earlier factory.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// New instantiates the named pass.
func (r *Registry) New(name string) (Optimizer, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown optimizer pass %q (registered: %v)", name, r.Names())
	}
	return f(), nil
}

// Names returns the registered pass names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate checks that every requested pass is registered and that every
// factory yields a pass reporting the name it was registered under.
func (r *Registry) Validate(ctx context.Context, passes []string) error {
	logger := ctxlog.FromContext(ctx)
	for _, name := range passes {
		opt, err := r.New(name)
		if err != nil {
			return err
		}
		if opt.Name() != name {
			return fmt.Errorf("pass registered as %q reports name %q", name, opt.Name())
		}
	}
	logger.Debug("Optimizer registry validation passed.", "passes", passes)
	return nil
}
