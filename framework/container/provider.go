package container

import (
	"fmt"
	"sync"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the registrations of one component.
//
// Register only binds; Boot runs after every eager provider is registered
// and may resolve anything.
//
//	type MailProvider struct{ container.BaseProvider }
//
//	func (p *MailProvider) Register(c *container.Container) error {
//	    return c.Singleton("Mail", func(c *container.Container) (any, error) {
//	        cfg, err := container.Resolve[*config.Config](c, "Config")
//	        if err != nil {
//	            return nil, err
//	        }
//	        return mail.New(cfg), nil
//	    })
//	}
type ServiceProvider interface {
	// Register binds namespaces into the container.
	Register(c *Container) error

	// Boot is called after all eager providers are registered.
	Boot(c *Container) error

	// Provides lists the namespaces a deferred provider registers.
	Provides() []string

	// IsDeferred reports whether Register waits until one of Provides() is
	// first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable no-op for Boot, Provides and IsDeferred.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []string      { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers and boots ServiceProviders against one
// container, loading deferred providers on first use of their namespaces.
type ProviderRegistry struct {
	app *Container

	mu         sync.Mutex
	eager      []ServiceProvider
	registered map[ServiceProvider]bool
	deferred   map[ServiceProvider]*deferredEntry
	booted     bool
}

// deferredEntry serialises the registration of one deferred provider.
type deferredEntry struct {
	mu     sync.Mutex
	loaded bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
		deferred:   make(map[ServiceProvider]*deferredEntry),
	}
}

// Register adds a provider. Eager providers are registered at once (and
// booted at once if the registry already booted); deferred providers get a
// placeholder binding per Provides() namespace. Registering the same
// provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return nil
	}
	r.registered[provider] = true
	booted := r.booted
	r.mu.Unlock()

	if provider.IsDeferred() {
		return r.interceptDeferred(provider)
	}

	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("container: register %T: %w", provider, err)
	}
	r.mu.Lock()
	r.eager = append(r.eager, provider)
	r.mu.Unlock()

	if booted {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("container: boot %T: %w", provider, err)
		}
	}
	return nil
}

// interceptDeferred binds a placeholder for each deferred namespace. The
// first Use of any of them registers the provider for real, which
// overwrites the placeholders, and then resolves the real binding. The
// placeholder's Use has already applied the namespace's extenders, so the
// real binding is resolved directly.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) error {
	for _, namespace := range provider.Provides() {
		ns := namespace
		var placeholder *binding
		err := r.app.Bind(ns, func(c *Container) (any, error) {
			if err := r.load(provider); err != nil {
				return nil, err
			}
			b, ok := c.lookup(ns)
			if !ok || b == placeholder {
				return nil, fmt.Errorf("deferred provider %T did not bind [%s]", provider, ns)
			}
			return c.resolveBinding(ns, b)
		})
		if err != nil {
			return err
		}
		placeholder, _ = r.app.lookup(ns)
	}
	return nil
}

// load registers a deferred provider once. Concurrent callers wait for the
// registration in flight; a failed Register is retried by the next caller.
func (r *ProviderRegistry) load(provider ServiceProvider) error {
	r.mu.Lock()
	entry, ok := r.deferred[provider]
	if !ok {
		entry = &deferredEntry{}
		r.deferred[provider] = entry
	}
	r.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.loaded {
		return nil
	}

	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("register %T: %w", provider, err)
	}
	if r.Booted() {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("boot %T: %w", provider, err)
		}
	}
	entry.loaded = true
	return nil
}

// Boot calls Boot on every eager provider, once.
func (r *ProviderRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	providers := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range providers {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("container: boot %T: %w", provider, err)
		}
	}
	return nil
}

// Booted returns true if Boot has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns the registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}
