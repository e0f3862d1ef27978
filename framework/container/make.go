package container

import (
	"fmt"
	"reflect"
	"strings"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// ── Constructibles ────────────────────────────────────────────────────────────

// Class pairs a constructor function with the namespaces its parameters are
// resolved from. Inject is positional: Inject[i] feeds parameter i.
//
//	c.Bind("App/Controllers/User", func(*container.Container) (any, error) {
//	    return container.NewClass(NewUserController, "App/Repositories/User", "Logger"), nil
//	})
type Class struct {
	Constructor any
	Inject      []string
}

// NewClass returns a Class with an explicit dependency list.
func NewClass(constructor any, inject ...string) *Class {
	if inject == nil {
		inject = []string{}
	}
	return &Class{Constructor: constructor, Inject: inject}
}

// Introspector discovers the ordered namespaces a constructor needs when no
// explicit Inject list is attached to it.
type Introspector interface {
	DeclaredDependencies(constructor any) ([]string, error)
}

// IntrospectorFunc adapts a function to the Introspector interface.
type IntrospectorFunc func(constructor any) ([]string, error)

// DeclaredDependencies calls f(constructor).
func (f IntrospectorFunc) DeclaredDependencies(constructor any) ([]string, error) {
	return f(constructor)
}

// TypeIntrospector names each constructor parameter by the TypeKey of its
// type, so func(*Config, Logger) needs ["<pkg>.Config", "<pkg>.Logger"].
type TypeIntrospector struct{}

// DeclaredDependencies implements Introspector.
func (TypeIntrospector) DeclaredDependencies(constructor any) ([]string, error) {
	t := reflect.TypeOf(constructor)
	if t == nil || t.Kind() != reflect.Func {
		return nil, fmt.Errorf("introspect %s: not a function", typeName(constructor))
	}
	if t.IsVariadic() {
		return nil, fmt.Errorf("introspect %s: variadic constructors are not supported", t)
	}
	deps := make([]string, t.NumIn())
	for i := range deps {
		deps[i] = typeKey(t.In(i))
	}
	return deps, nil
}

// ── Make ──────────────────────────────────────────────────────────────────────

// Make builds an instance of constructible, which is either a *Class or a
// bare constructor function. Each declared dependency is resolved through
// Use, in order, and passed positionally. A constructor may return (T) or
// (T, error).
//
//	v, err := c.Make(container.NewClass(NewMailer, "Config", "Logger"))
func (c *Container) Make(constructible any) (any, error) {
	fn, deps, err := c.describe(constructible)
	if err != nil {
		return nil, err
	}

	args := make([]reflect.Value, len(deps))
	for i, ns := range deps {
		arg, err := c.argument(ns, fn.Type().In(i))
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	v, err := construct(fn, args)
	if c.metrics != nil {
		c.metrics.RecordConstruction(err)
	}
	if err != nil {
		return nil, &ResolutionError{Namespace: fn.Type().String(), Stage: "constructor", Err: err}
	}
	return v, nil
}

// describe validates constructible and returns its constructor and the
// namespaces to inject.
func (c *Container) describe(constructible any) (reflect.Value, []string, error) {
	var (
		ctor   any
		deps   []string
		listed bool
	)
	switch v := constructible.(type) {
	case *Class:
		if v == nil {
			return reflect.Value{}, nil, &InvalidTypeError{Type: "*container.Class", Reason: "nil class"}
		}
		ctor, deps, listed = v.Constructor, v.Inject, v.Inject != nil
	default:
		ctor = constructible
	}

	fn := reflect.ValueOf(ctor)
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return reflect.Value{}, nil, &InvalidTypeError{Type: typeName(constructible), Reason: "not a constructor function"}
	}
	t := fn.Type()
	if t.NumOut() == 0 || t.NumOut() > 2 || (t.NumOut() == 2 && t.Out(1) != errorType) {
		return reflect.Value{}, nil, &InvalidTypeError{Type: t.String(), Reason: "constructor must return (T) or (T, error)"}
	}

	if !listed {
		var err error
		deps, err = c.introspector.DeclaredDependencies(ctor)
		if err != nil {
			return reflect.Value{}, nil, fmt.Errorf("container: dependencies of %s: %w", t, err)
		}
	}
	if t.IsVariadic() || len(deps) != t.NumIn() {
		return reflect.Value{}, nil, &InvalidTypeError{
			Type:   t.String(),
			Reason: fmt.Sprintf("declares %d dependencies for %d parameters", len(deps), t.NumIn()),
		}
	}
	return fn, deps, nil
}

// argument resolves namespace and converts it to the parameter type.
func (c *Container) argument(namespace string, param reflect.Type) (reflect.Value, error) {
	v, err := c.Use(namespace)
	if err != nil {
		return reflect.Value{}, err
	}
	if v == nil {
		return reflect.Zero(param), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(param) {
		return reflect.Value{}, &TypeMismatchError{Namespace: namespace, Expected: param.String(), Got: rv.Type().String()}
	}
	return rv, nil
}

func construct(fn reflect.Value, args []reflect.Value) (any, error) {
	out := fn.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

// ── MakeFunc ──────────────────────────────────────────────────────────────────

// MethodRef is an instance paired with the name of one of its methods.
type MethodRef struct {
	Instance any
	Method   string
}

// Func returns the bound method value, ready for Call.
func (r *MethodRef) Func() reflect.Value {
	return reflect.ValueOf(r.Instance).MethodByName(r.Method)
}

// MakeFunc resolves "namespace.Method": the namespace is resolved with Use,
// the result is built with Make, and the instance must have an exported
// method named Method. Calling the method is left to the caller.
//
//	ref, err := c.MakeFunc("App/Controllers/User.Store")
//	out := ref.Func().Call(args)
func (c *Container) MakeFunc(reference string) (*MethodRef, error) {
	parts := strings.Split(reference, ".")
	if len(parts) != 2 {
		return nil, &MalformedReferenceError{Reference: reference}
	}
	namespace, method := parts[0], parts[1]

	resolved, err := c.Use(namespace)
	if err != nil {
		return nil, err
	}
	instance, err := c.Make(resolved)
	if err != nil {
		return nil, err
	}
	if instance == nil || !reflect.ValueOf(instance).MethodByName(method).IsValid() {
		return nil, &MissingMethodError{Namespace: namespace, Method: method, Type: typeName(instance)}
	}
	return &MethodRef{Instance: instance, Method: method}, nil
}
