// Package loader turns a resolved module path into the module's exported
// value. The container computes paths for autoloaded namespaces and hands
// them to a Loader; everything about reading and caching files lives here.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader returns the exported value of the module at path.
type Loader interface {
	Load(path string) (any, error)
}

// Func adapts a plain function to the Loader interface.
type Func func(path string) (any, error)

// Load calls f(path).
func (f Func) Load(path string) (any, error) { return f(path) }

// ── Errors ───────────────────────────────────────────────────────────────────

// NotFoundError is returned when no module exists at a path.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("loader: module not found: %s", e.Path)
}

// Unwrap lets callers test with errors.Is(err, fs.ErrNotExist).
func (e *NotFoundError) Unwrap() error { return fs.ErrNotExist }

// DecodeError is returned when a module file exists but cannot be decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("loader: decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ── Static modules ───────────────────────────────────────────────────────────

// Map is a Loader backed by values registered in code, keyed by path in
// slash form. It lets compiled packages publish themselves under the
// autoload directory without touching the filesystem.
//
//	mods := loader.Map{"app/Services/Mailer": &Mailer{}}
type Map map[string]any

// Load returns the value registered at path.
func (m Map) Load(path string) (any, error) {
	if v, ok := m[filepath.ToSlash(filepath.Clean(path))]; ok {
		return v, nil
	}
	return nil, &NotFoundError{Path: path}
}

// ── File modules ─────────────────────────────────────────────────────────────

// Decoder parses a module file's contents.
type Decoder func(data []byte) (any, error)

// DefaultExtensions is the lookup order for paths given without an extension.
var DefaultExtensions = []string{".yaml", ".yml", ".json", ".toml", ".env"}

// FileLoader reads data modules from disk, picking a decoder by extension.
// A path without a known extension is tried with each of Extensions in turn.
type FileLoader struct {
	Extensions []string
	decoders   map[string]Decoder
}

// NewFileLoader returns a FileLoader with YAML, JSON, TOML and dotenv decoders.
func NewFileLoader() *FileLoader {
	return &FileLoader{
		Extensions: append([]string(nil), DefaultExtensions...),
		decoders: map[string]Decoder{
			".yaml": decodeYAML,
			".yml":  decodeYAML,
			".json": decodeYAML,
			".toml": decodeTOML,
			".env":  decodeEnv,
		},
	}
}

// RegisterDecoder adds or replaces the decoder for ext (".ini", ".hcl", ...).
func (l *FileLoader) RegisterDecoder(ext string, d Decoder) {
	ext = strings.ToLower(ext)
	l.decoders[ext] = d
	for _, e := range l.Extensions {
		if e == ext {
			return
		}
	}
	l.Extensions = append(l.Extensions, ext)
}

// Load reads and decodes the module at path.
func (l *FileLoader) Load(path string) (any, error) {
	file, dec, err := l.locate(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: file}
		}
		return nil, err
	}
	v, err := dec(data)
	if err != nil {
		return nil, &DecodeError{Path: file, Err: err}
	}
	return v, nil
}

func (l *FileLoader) locate(path string) (string, Decoder, error) {
	if dec, ok := l.decoders[strings.ToLower(filepath.Ext(path))]; ok {
		return path, dec, nil
	}
	for _, ext := range l.Extensions {
		candidate := path + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, l.decoders[ext], nil
		}
	}
	return "", nil, &NotFoundError{Path: path}
}

func decodeYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v == nil {
		v = map[string]any{}
	}
	return v, nil
}

func decodeTOML(data []byte) (any, error) {
	v := map[string]any{}
	if _, err := toml.Decode(string(data), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeEnv(data []byte) (any, error) {
	return godotenv.Parse(bytes.NewReader(data))
}

// ── Cache ────────────────────────────────────────────────────────────────────

// Cache memoises successful loads of another Loader by path. Failures are
// not cached, so a module created after a failed lookup is picked up.
type Cache struct {
	next Loader

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	mu     sync.Mutex
	loaded bool
	value  any
}

// NewCache wraps next with a per-path cache.
func NewCache(next Loader) *Cache {
	return &Cache{next: next, entries: make(map[string]*cacheEntry)}
}

// Load returns the cached value for path, loading it on first use.
func (c *Cache) Load(path string) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[path]
	if !ok {
		e = &cacheEntry{}
		c.entries[path] = e
	}
	c.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded {
		return e.value, nil
	}
	v, err := c.next.Load(path)
	if err != nil {
		return nil, err
	}
	e.value, e.loaded = v, true
	return v, nil
}

// Forget drops the cached value for path.
func (c *Cache) Forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}
