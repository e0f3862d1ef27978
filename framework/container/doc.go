// Package container provides a namespace-based IoC container and Service
// Provider system for Go.
//
// # Overview
//
// The container maps string namespaces ("App/Repositories/User", "Cache")
// to lazily-built values. Consumers ask for a namespace with Use and never
// import the package that registered it.
//
// Use tries, in order:
//
//  1. a binding registered with Bind, Singleton or Instance
//  2. the autoload rule, which turns the namespace into a path under a
//     directory and hands it to a loader.Loader
//  3. an alias, followed through a full recursive Use
//
// and fails with *UnresolvableNamespaceError otherwise. Fakes registered
// with Fake are checked before all three.
//
// # Bindings
//
//	// Transient: a new value every Use
//	c.Bind("Hash", func(c *container.Container) (any, error) { return &Hasher{}, nil })
//
//	// Singleton: built once, reused
//	c.Singleton("Database", func(c *container.Container) (any, error) {
//	    cfg, err := container.Resolve[*config.Config](c, "Config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return sql.Open(cfg.DB.Driver, cfg.DB.DSN)
//	})
//
//	// Pre-built value
//	c.Instance("Config", cfg)
//
//	// Alias
//	c.Alias("Db", "Database")
//
//	// Autoload: "App/Config/Mail" → ./app/Config/Mail(.yaml|.json|.toml|.env)
//	c.Autoload("App/", "./app")
//
// # Managers and extenders
//
// A manager is a binding's companion object that accepts named definitions.
// Extenders queue those definitions; they are applied, in registration
// order, each time the namespace is resolved and before its binding runs.
//
//	c.Singleton("Cache", func(*container.Container) (any, error) { return cacheManager, nil })
//	c.Manager("Cache", cacheManager)
//	c.Extend("Cache", "redis", func(c *container.Container) (any, error) {
//	    return &RedisStore{}, nil
//	})
//
// # Constructor injection
//
//	// Explicit dependency list
//	v, err := c.Make(container.NewClass(NewMailer, "Config", "Logger"))
//
//	// Dependencies named after parameter types (see TypeIntrospector)
//	v, err := c.Make(NewMailer)
//
//	// "namespace.Method" references
//	ref, err := c.MakeFunc("App/Controllers/User.Store")
//	ref.Func().Call(nil)
//
// # Service Providers
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&MailProvider{})
//	registry.Boot()
//
// Deferred providers (IsDeferred() == true) register only when one of their
// Provides() namespaces is first resolved.
//
// # Concurrency
//
// Registration and resolution may run concurrently. Singleton factories run
// at most once per successful build. Dependency cycles are not detected: a
// cyclic transient chain recurses until the stack overflows and a singleton
// that resolves itself deadlocks.
package container
