package container

import (
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-fold/framework/loader"
	"github.com/km-arc/go-fold/framework/metrics"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory builds the value behind a namespace. It receives the container so
// providers can pull further dependencies through Use.
type Factory func(c *Container) (any, error)

// Manager is an extensible subsystem (a driver registry, a channel list, ...)
// that accepts named definitions contributed by extenders.
type Manager interface {
	Extend(key string, definition any) error
}

// binding holds a registered factory and, for singletons, its cached result.
type binding struct {
	factory   Factory
	singleton bool

	// guards instance; held while a singleton factory runs
	mu       sync.Mutex
	resolved bool
	instance any
}

// extender is a deferred contribution to a namespace's manager.
type extender struct {
	key     string
	factory Factory
}

// autoloadRule maps a namespace prefix onto a directory.
type autoloadRule struct {
	namespace string
	directory string
}

func (r *autoloadRule) matches(namespace string) bool {
	return strings.HasPrefix(namespace, r.namespace)
}

func (r *autoloadRule) path(namespace string) string {
	rest := strings.TrimPrefix(namespace, r.namespace)
	return filepath.Join(r.directory, filepath.FromSlash(rest))
}

// Source names the precedence rule that serves a namespace.
type Source string

const (
	SourceFake     Source = "fake"
	SourceBinding  Source = "binding"
	SourceAutoload Source = "autoload"
	SourceAlias    Source = "alias"
	SourceNone     Source = "none"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the namespace registry and resolver.
//
// It owns:
//   - bindings (transient and singleton factories)
//   - managers and the extenders queued for them
//   - aliases
//   - a single autoload rule backed by a loader.Loader
//   - fakes that shadow everything else during tests
type Container struct {
	mu sync.RWMutex

	// namespace → binding
	bindings map[string]*binding

	// namespace → manager
	managers map[string]Manager

	// namespace → extenders in registration order
	extenders map[string][]extender

	// alias → target namespace
	aliases map[string]string

	// namespace → fake factory
	fakes map[string]Factory

	autoload *autoloadRule

	loader       loader.Loader
	introspector Introspector
	log          zerolog.Logger
	metrics      *metrics.Collector
}

// Option configures a Container.
type Option func(*Container)

// WithLoader sets the module loader used for autoloaded namespaces.
func WithLoader(l loader.Loader) Option {
	return func(c *Container) { c.loader = l }
}

// WithIntrospector sets how Make discovers the dependencies of a constructor
// that carries no explicit Inject list.
func WithIntrospector(i Introspector) Option {
	return func(c *Container) { c.introspector = i }
}

// WithLogger sets the logger for resolution events (debug level).
func WithLogger(l zerolog.Logger) Option {
	return func(c *Container) { c.log = l.With().Str("component", "container").Logger() }
}

// WithMetrics records resolutions into m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Container) { c.metrics = m }
}

// New creates an empty container. Without options it autoloads through a
// cached loader.FileLoader, introspects parameter types and logs nothing.
func New(opts ...Option) *Container {
	c := &Container{
		bindings:     make(map[string]*binding),
		managers:     make(map[string]Manager),
		extenders:    make(map[string][]extender),
		aliases:      make(map[string]string),
		fakes:        make(map[string]Factory),
		loader:       loader.NewCache(loader.NewFileLoader()),
		introspector: TypeIntrospector{},
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient factory: every Use runs it again.
//
//	c.Bind("App/Repositories/User", func(c *container.Container) (any, error) {
//	    db, err := container.Resolve[*sql.DB](c, "Database")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &UserRepository{DB: db}, nil
//	})
func (c *Container) Bind(namespace string, factory Factory) error {
	return c.bind(namespace, factory, false)
}

// Singleton registers a factory whose first successful result is cached and
// returned by every later Use.
func (c *Container) Singleton(namespace string, factory Factory) error {
	return c.bind(namespace, factory, true)
}

// Instance registers a pre-built value as an already-resolved singleton.
func (c *Container) Instance(namespace string, value any) {
	b := &binding{
		factory:   func(*Container) (any, error) { return value, nil },
		singleton: true,
		resolved:  true,
		instance:  value,
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[namespace] = b
}

func (c *Container) bind(namespace string, factory Factory, singleton bool) error {
	if factory == nil {
		return &InvalidBindingError{Namespace: namespace}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[namespace] = &binding{factory: factory, singleton: singleton}
	return nil
}

func (c *Container) lookup(namespace string) (*binding, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.bindings[namespace]
	return b, ok
}

// Manager registers definition as the manager of namespace. Extenders queued
// with Extend are handed to it every time the namespace is resolved.
func (c *Container) Manager(namespace string, definition any) error {
	m, ok := definition.(Manager)
	if !ok {
		return &IncompleteImplementationError{Namespace: namespace, Type: typeName(definition)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.managers[namespace] = m
	return nil
}

// Extend queues a definition for the manager of namespace under key.
//
//	c.Extend("Cache", "redis", func(c *container.Container) (any, error) {
//	    return &RedisStore{}, nil
//	})
func (c *Container) Extend(namespace, key string, factory Factory) error {
	if factory == nil {
		return &InvalidExtenderError{Namespace: namespace, Key: key}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extenders[namespace] = append(c.extenders[namespace], extender{key: key, factory: factory})
	return nil
}

// Alias makes key resolve to whatever namespace resolves to. The target is
// looked up through the full precedence chain on each Use.
func (c *Container) Alias(key, namespace string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aliases[key] = namespace
}

// Autoload replaces the autoload rule: namespaces starting with prefix are
// loaded from directory, with the prefix swapped for the directory.
//
//	c.Autoload("App/", "./app")  // "App/Config/Mail" → ./app/Config/Mail
func (c *Container) Autoload(prefix, directory string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoload = &autoloadRule{namespace: prefix, directory: directory}
}

// ── Fakes ─────────────────────────────────────────────────────────────────────

// Fake makes Use(namespace) return factory's result ahead of every other
// rule until Restore is called. Meant for tests.
func (c *Container) Fake(namespace string, factory Factory) error {
	if factory == nil {
		return &InvalidBindingError{Namespace: namespace}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fakes[namespace] = factory
	return nil
}

// Restore removes the fake for namespace.
func (c *Container) Restore(namespace string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.fakes, namespace)
}

// RestoreAll removes every fake.
func (c *Container) RestoreAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fakes = make(map[string]Factory)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Use resolves namespace. The first matching rule wins:
//
//  1. a binding: queued extenders are applied to the namespace's manager,
//     then the binding's factory (or singleton cache) provides the value
//  2. the autoload rule: the computed path is handed to the loader
//  3. an alias: Use is called again with the alias target
//
// Anything else is an *UnresolvableNamespaceError. An alias chain counts as
// one resolution, recorded under SourceAlias.
func (c *Container) Use(namespace string) (any, error) {
	v, source, err := c.resolve(namespace)
	return c.done(namespace, source, v, err)
}

func (c *Container) resolve(namespace string) (any, Source, error) {
	c.mu.RLock()
	fake, faked := c.fakes[namespace]
	b, bound := c.bindings[namespace]
	rule := c.autoload
	target, aliased := c.aliases[namespace]
	c.mu.RUnlock()

	switch {
	case faked:
		v, err := fake(c)
		if err != nil {
			err = &ResolutionError{Namespace: namespace, Stage: "fake", Err: err}
		}
		return v, SourceFake, err

	case bound:
		if err := c.applyExtenders(namespace); err != nil {
			return nil, SourceBinding, err
		}
		v, err := c.resolveBinding(namespace, b)
		return v, SourceBinding, err

	case rule != nil && rule.matches(namespace):
		path := rule.path(namespace)
		v, err := c.loader.Load(path)
		if err != nil {
			err = &AutoloadError{Namespace: namespace, Path: path, Err: err}
		}
		return v, SourceAutoload, err

	case aliased:
		c.log.Debug().Str("namespace", namespace).Str("target", target).Msg("following alias")
		v, _, err := c.resolve(target)
		return v, SourceAlias, err
	}

	return nil, SourceNone, &UnresolvableNamespaceError{Namespace: namespace}
}

// MustUse is like Use but panics on error.
func (c *Container) MustUse(namespace string) any {
	v, err := c.Use(namespace)
	if err != nil {
		panic(err)
	}
	return v
}

// Explain reports which rule Use would pick for namespace without running
// anything.
func (c *Container) Explain(namespace string) Source {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case c.fakes[namespace] != nil:
		return SourceFake
	case c.bindings[namespace] != nil:
		return SourceBinding
	case c.autoload != nil && c.autoload.matches(namespace):
		return SourceAutoload
	}
	if _, ok := c.aliases[namespace]; ok {
		return SourceAlias
	}
	return SourceNone
}

func (c *Container) done(namespace string, source Source, v any, err error) (any, error) {
	if c.metrics != nil {
		c.metrics.RecordResolution(string(source), err)
	}
	if err != nil {
		c.log.Debug().Err(err).Str("namespace", namespace).Str("source", string(source)).Msg("resolution failed")
		return nil, err
	}
	c.log.Debug().Str("namespace", namespace).Str("source", string(source)).Msg("resolved")
	return v, nil
}

// resolveBinding runs the factory, or returns the singleton cache.
func (c *Container) resolveBinding(namespace string, b *binding) (any, error) {
	if !b.singleton {
		v, err := b.factory(c)
		if err != nil {
			return nil, &ResolutionError{Namespace: namespace, Stage: "factory", Err: err}
		}
		return v, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.resolved {
		return b.instance, nil
	}
	v, err := b.factory(c)
	if c.metrics != nil {
		c.metrics.RecordSingletonBuild(namespace, err)
	}
	if err != nil {
		return nil, &ResolutionError{Namespace: namespace, Stage: "singleton factory", Err: err}
	}
	b.instance, b.resolved = v, true
	c.log.Debug().Str("namespace", namespace).Msg("singleton built")
	return v, nil
}

// applyExtenders hands every queued extender of namespace to its manager, in
// registration order. It runs on each Use so extenders added after the first
// resolution still reach the manager.
func (c *Container) applyExtenders(namespace string) error {
	c.mu.RLock()
	m := c.managers[namespace]
	exts := append([]extender(nil), c.extenders[namespace]...)
	c.mu.RUnlock()

	if m == nil || len(exts) == 0 {
		return nil
	}
	for _, ext := range exts {
		err := c.applyExtender(namespace, m, ext)
		if c.metrics != nil {
			c.metrics.RecordExtension(namespace, err)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) applyExtender(namespace string, m Manager, ext extender) error {
	definition, err := ext.factory(c)
	if err != nil {
		return &ResolutionError{Namespace: namespace, Stage: "extender " + ext.key, Err: err}
	}
	if err := m.Extend(ext.key, definition); err != nil {
		return &ResolutionError{Namespace: namespace, Stage: "manager extend " + ext.key, Err: err}
	}
	c.log.Debug().Str("namespace", namespace).Str("key", ext.key).Msg("extender applied")
	return nil
}

// ── Introspection ─────────────────────────────────────────────────────────────

// ProviderInfo describes one binding.
type ProviderInfo struct {
	Singleton bool `json:"singleton" yaml:"singleton"`
	Resolved  bool `json:"resolved" yaml:"resolved"`
}

// ExtenderInfo describes one queued extender.
type ExtenderInfo struct {
	Key string `json:"key" yaml:"key"`
}

// AutoloadInfo describes the autoload rule.
type AutoloadInfo struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	Directory string `json:"directory" yaml:"directory"`
}

// GetProviders returns a snapshot of the bindings.
func (c *Container) GetProviders() map[string]ProviderInfo {
	c.mu.RLock()
	bs := make(map[string]*binding, len(c.bindings))
	for ns, b := range c.bindings {
		bs[ns] = b
	}
	c.mu.RUnlock()

	out := make(map[string]ProviderInfo, len(bs))
	for ns, b := range bs {
		info := ProviderInfo{Singleton: b.singleton}
		if b.singleton && b.mu.TryLock() {
			info.Resolved = b.resolved
			b.mu.Unlock()
		}
		out[ns] = info
	}
	return out
}

// GetManagers returns a snapshot of the managers.
func (c *Container) GetManagers() map[string]Manager {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Manager, len(c.managers))
	for ns, m := range c.managers {
		out[ns] = m
	}
	return out
}

// GetExtenders returns a snapshot of the queued extenders, in order.
func (c *Container) GetExtenders() map[string][]ExtenderInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]ExtenderInfo, len(c.extenders))
	for ns, exts := range c.extenders {
		infos := make([]ExtenderInfo, len(exts))
		for i, e := range exts {
			infos[i] = ExtenderInfo{Key: e.key}
		}
		out[ns] = infos
	}
	return out
}

// GetAliases returns a snapshot of the aliases.
func (c *Container) GetAliases() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.aliases))
	for k, v := range c.aliases {
		out[k] = v
	}
	return out
}

// GetAutoload returns the autoload rule, if one is set.
func (c *Container) GetAutoload() (AutoloadInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.autoload == nil {
		return AutoloadInfo{}, false
	}
	return AutoloadInfo{Namespace: c.autoload.namespace, Directory: c.autoload.directory}, true
}

// HasBinding reports whether namespace has a binding.
func (c *Container) HasBinding(namespace string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bindings[namespace]
	return ok
}

// HasManager reports whether namespace has a manager.
func (c *Container) HasManager(namespace string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.managers[namespace]
	return ok
}

// Namespaces returns every bound namespace, sorted.
func (c *Container) Namespaces() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bindings))
	for ns := range c.bindings {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve calls Use and type-asserts the result.
//
//	cfg, err := container.Resolve[*config.Config](c, "Config")
func Resolve[T any](c *Container, namespace string) (T, error) {
	var zero T
	v, err := c.Use(namespace)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		expected := reflect.TypeOf((*T)(nil)).Elem().String()
		return zero, &TypeMismatchError{Namespace: namespace, Expected: expected, Got: typeName(v)}
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, namespace string) T {
	v, err := Resolve[T](c, namespace)
	if err != nil {
		panic(err)
	}
	return v
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v, useful as a stable
// namespace when working with interfaces.
//
//	key := container.TypeKey((*UserRepository)(nil))  // "example.com/app.UserRepository"
func TypeKey(v any) string {
	return typeKey(reflect.TypeOf(v))
}

func typeKey(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", v)
}
