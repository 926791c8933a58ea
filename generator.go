// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package ahdl

// A GenFn is a generator body: a pure function from parameter values
// to a Module.
//
type GenFn func(p Params) (*Module, error)

// A CtxGenFn is a generator body that also receives the elaboration
// Context.
//
type CtxGenFn func(p Params, ctx *Context) (*Module, error)

// A Generator is a deferred, parameterized Module factory. It is a
// descriptor, not a callable: the wrapped function only runs inside
// Elaborate, which names and tracks the result. Calling the function
// any other way would silently skip that bookkeeping, so Call always
// fails.
//
type Generator struct {
	name  string
	class *ParamClass
	fn    GenFn
	ctxFn CtxGenFn
}

// NewGenerator registers fn as a generator. It fails with a
// SignatureError if fn is nil, the name is empty or the parameter
// class is nil (use HasNoParams for parameterless generators).
//
func NewGenerator(name string, class *ParamClass, fn GenFn) (*Generator, error) {
	if err := checkGenSig(name, class, fn == nil); err != nil {
		return nil, err
	}
	return &Generator{name: name, class: class, fn: fn}, nil
}

// NewGeneratorCtx registers fn as a generator that receives the
// elaboration Context.
//
func NewGeneratorCtx(name string, class *ParamClass, fn CtxGenFn) (*Generator, error) {
	if err := checkGenSig(name, class, fn == nil); err != nil {
		return nil, err
	}
	return &Generator{name: name, class: class, ctxFn: fn}, nil
}

func checkGenSig(name string, class *ParamClass, nilFn bool) error {
	if nilFn {
		return &SignatureError{Gen: name, Reason: "generator function is nil"}
	}
	if name == "" {
		return &SignatureError{Reason: "generator name is empty"}
	}
	if class == nil {
		return &SignatureError{Gen: name, Reason: "parameter class is nil; use HasNoParams for parameterless generators"}
	}
	return nil
}

// MustGenerator is like NewGenerator but panics on error. Intended for
// package-level generator declarations.
//
func MustGenerator(name string, class *ParamClass, fn GenFn) *Generator {
	g, err := NewGenerator(name, class, fn)
	if err != nil {
		panic(err)
	}
	return g
}

// MustGeneratorCtx is like NewGeneratorCtx but panics on error.
//
func MustGeneratorCtx(name string, class *ParamClass, fn CtxGenFn) *Generator {
	g, err := NewGeneratorCtx(name, class, fn)
	if err != nil {
		panic(err)
	}
	return g
}

// Name returns the generator name. Unnamed modules returned by the
// generator body take this name during elaboration.
//
func (g *Generator) Name() string { return g.name }

// ParamClass returns the declared parameter class.
//
func (g *Generator) ParamClass() *ParamClass { return g.class }

// UsesContext reports whether the generator body receives the
// elaboration Context.
//
func (g *Generator) UsesContext() bool { return g.ctxFn != nil }

// Call always fails with a UsageError. Generators are resolved through
// Elaborate, never invoked directly; see Bind for deferring a call
// inside a module under construction.
//
func (g *Generator) Call(Params) (*Module, error) {
	return nil, &UsageError{
		Op:     "call of generator " + g.name,
		Reason: "generators cannot be called directly; elaborate them with ahdl.Elaborate",
	}
}

// Bind pairs the generator with parameter values without running it,
// for use as an instance definition. It fails with a
// TypeMismatchError if p is not an instance of the generator's
// parameter class.
//
func (g *Generator) Bind(p Params) (*GenCall, error) {
	if p.Class() != g.class {
		return nil, &TypeMismatchError{
			Want: "params of class " + g.class.Name() + " for generator " + g.name,
			Got:  describeParams(p),
		}
	}
	return &GenCall{gen: g, params: p}, nil
}

// MustBind is like Bind but panics on error.
//
func (g *Generator) MustBind(p Params) *GenCall {
	c, err := g.Bind(p)
	if err != nil {
		panic(err)
	}
	return c
}

func describeParams(p Params) string {
	switch {
	case p.IsZero():
		return "no params"
	case p.Class() != nil:
		return "params of class " + p.Class().Name()
	}
	return "raw params"
}

// A GenCall is a deferred generator invocation: a (Generator,
// parameter values) pair usable as an instance definition. Elaboration
// resolves it into a concrete Module.
//
type GenCall struct {
	gen    *Generator
	params Params
}

// Generator returns the bound generator.
//
func (c *GenCall) Generator() *Generator { return c.gen }

// Params returns the bound parameter values.
//
func (c *GenCall) Params() Params { return c.params }
