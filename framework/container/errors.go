package container

import "fmt"

// InvalidBindingError is returned by Bind and Singleton when the factory is nil.
type InvalidBindingError struct {
	Namespace string
}

func (e *InvalidBindingError) Error() string {
	return fmt.Sprintf("container: invalid binding for [%s]: factory is nil", e.Namespace)
}

// InvalidExtenderError is returned by Extend when the factory is nil.
type InvalidExtenderError struct {
	Namespace string
	Key       string
}

func (e *InvalidExtenderError) Error() string {
	return fmt.Sprintf("container: invalid extender [%s] for [%s]: factory is nil", e.Key, e.Namespace)
}

// IncompleteImplementationError is returned by Manager when the definition
// does not implement the Manager interface.
type IncompleteImplementationError struct {
	Namespace string
	Type      string
}

func (e *IncompleteImplementationError) Error() string {
	return fmt.Sprintf("container: manager for [%s] must implement Extend, got %s", e.Namespace, e.Type)
}

// UnresolvableNamespaceError is returned by Use when no fake, binding,
// autoload rule or alias matches the namespace.
type UnresolvableNamespaceError struct {
	Namespace string
}

func (e *UnresolvableNamespaceError) Error() string {
	return fmt.Sprintf("container: cannot resolve [%s]: no binding, autoload rule or alias", e.Namespace)
}

// InvalidTypeError is returned by Make for values that cannot be constructed.
type InvalidTypeError struct {
	Type   string
	Reason string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("container: cannot make %s: %s", e.Type, e.Reason)
}

// MalformedReferenceError is returned by MakeFunc when the reference is not
// of the form "namespace.Method".
type MalformedReferenceError struct {
	Reference string
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("container: malformed reference %q: expected namespace.Method", e.Reference)
}

// MissingMethodError is returned by MakeFunc when the constructed instance
// has no exported method of the requested name.
type MissingMethodError struct {
	Namespace string
	Method    string
	Type      string
}

func (e *MissingMethodError) Error() string {
	return fmt.Sprintf("container: method %s missing on %s (resolved from [%s])", e.Method, e.Type, e.Namespace)
}

// TypeMismatchError is returned by Make when a resolved dependency cannot be
// passed to the constructor parameter it was declared for.
type TypeMismatchError struct {
	Namespace string
	Expected  string
	Got       string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("container: [%s] resolved to %s, constructor expects %s", e.Namespace, e.Got, e.Expected)
}

// AutoloadError wraps a module loader failure for an autoloaded namespace.
type AutoloadError struct {
	Namespace string
	Path      string
	Err       error
}

func (e *AutoloadError) Error() string {
	return fmt.Sprintf("container: autoload [%s] from %s: %v", e.Namespace, e.Path, e.Err)
}

func (e *AutoloadError) Unwrap() error {
	return e.Err
}

// ResolutionError wraps a failure raised by a factory, extender, manager or
// constructor while resolving a namespace.
type ResolutionError struct {
	Namespace string
	Stage     string
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("container: %s failed for [%s]: %v", e.Stage, e.Namespace, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
