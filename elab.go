// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package ahdl

import (
	"fmt"

	"github.com/pkg/errors"
)

// DefaultMaxDepth is the default elaboration depth limit. Hierarchies
// deeper than this are reported as cycles.
//
const DefaultMaxDepth = 512

// An Option configures an Elaborate call.
//
type Option func(*Elaborator)

// WithParams supplies the parameter values for a Generator top.
// Required exactly when the top item is a *Generator.
//
func WithParams(p Params) Option {
	return func(e *Elaborator) { e.params, e.hasParams = p, true }
}

// WithContext supplies the elaboration Context. A fresh one is created
// if absent.
//
func WithContext(ctx *Context) Option {
	return func(e *Elaborator) { e.ctx = ctx }
}

// WithMaxDepth overrides the elaboration depth limit.
//
func WithMaxDepth(n int) Option {
	return func(e *Elaborator) { e.maxDepth = n }
}

type genKey struct {
	gen *Generator
	fp  string
}

// An Elaborator resolves a hierarchy of Modules and generator calls
// into concrete, fully instantiated Modules. It tracks finished
// modules so shared subtrees are walked once, and keeps an in-progress
// set plus a depth limit so self-referential hierarchies fail with a
// CycleError instead of exhausting the stack.
//
type Elaborator struct {
	ctx       *Context
	params    Params
	hasParams bool
	maxDepth  int

	depth   int
	done    map[*Module]bool
	busyMod map[*Module]bool
	busyGen map[genKey]bool
	path    []string
}

// Elaborate resolves top and every definition reachable from it,
// returning the elaborated top Module. top must be a *Module, a
// *Generator or a *GenCall. Parameter values must be supplied with
// WithParams exactly when top is a *Generator; a mismatch fails with a
// UsageError.
//
func Elaborate(top any, opts ...Option) (*Module, error) {
	e := &Elaborator{
		maxDepth: DefaultMaxDepth,
		done:     make(map[*Module]bool),
		busyMod:  make(map[*Module]bool),
		busyGen:  make(map[genKey]bool),
	}
	for _, o := range opts {
		o(e)
	}
	if e.ctx == nil {
		e.ctx = NewContext()
	}
	return e.elaborate(top)
}

func (e *Elaborator) elaborate(top any) (*Module, error) {
	switch t := top.(type) {
	case *Module:
		if t == nil {
			return nil, errNilTop("*ahdl.Module")
		}
		if e.hasParams {
			return nil, &UsageError{
				Op:     "elaborate module " + t.displayName(),
				Reason: "params given for a non-generator top",
			}
		}
		return e.elaborateModule(t)
	case *Generator:
		if t == nil {
			return nil, errNilTop("*ahdl.Generator")
		}
		if !e.hasParams {
			return nil, &UsageError{
				Op:     "elaborate generator " + t.name,
				Reason: "generator tops require params; use ahdl.WithParams",
			}
		}
		return e.elaborateGenerator(t, e.params)
	case *GenCall:
		if t == nil {
			return nil, errNilTop("*ahdl.GenCall")
		}
		if e.hasParams {
			return nil, &UsageError{
				Op:     "elaborate generator call " + t.gen.name,
				Reason: "params are already bound by the call",
			}
		}
		return e.elaborateGenerator(t.gen, t.params)
	}
	return nil, &TypeMismatchError{
		Want: "*ahdl.Module, *ahdl.Generator or *ahdl.GenCall top",
		Got:  fmt.Sprintf("%T", top),
	}
}

func errNilTop(kind string) error {
	return &TypeMismatchError{
		Want: "*ahdl.Module, *ahdl.Generator or *ahdl.GenCall top",
		Got:  "nil " + kind,
	}
}

func (e *Elaborator) enter(label string) error {
	e.depth++
	e.path = append(e.path, label)
	if e.depth > e.maxDepth {
		return &CycleError{Path: append([]string(nil), e.path...)}
	}
	return nil
}

func (e *Elaborator) leave() {
	e.depth--
	e.path = e.path[:len(e.path)-1]
}

// elaborateGenerator runs the generator body with the given parameter
// values and elaborates the resulting Module. Unnamed results take the
// generator's name; the parameter values are attached to the result
// for traceability.
//
func (e *Elaborator) elaborateGenerator(g *Generator, p Params) (*Module, error) {
	if p.Class() != g.class {
		return nil, &TypeMismatchError{
			Want: "params of class " + g.class.Name() + " for generator " + g.name,
			Got:  describeParams(p),
		}
	}
	key := genKey{gen: g, fp: p.Fingerprint()}
	if e.busyGen[key] {
		return nil, &CycleError{Path: append(append([]string(nil), e.path...), g.name)}
	}
	if err := e.enter("generator " + g.name); err != nil {
		return nil, err
	}
	defer e.leave()
	e.busyGen[key] = true
	defer delete(e.busyGen, key)

	var m *Module
	var err error
	if g.ctxFn != nil {
		m, err = g.ctxFn(p, e.ctx)
	} else {
		m, err = g.fn(p)
	}
	if err != nil {
		return nil, errors.Wrap(err, "generator "+g.name)
	}
	if m == nil {
		return nil, &TypeMismatchError{
			Want: "*ahdl.Module from generator " + g.name,
			Got:  "nil",
		}
	}
	m.genParams = p
	if m.name == "" {
		m.name = g.name
	}
	return e.elaborateModule(m)
}

// elaborateModule resolves every instance of m, depth first. Modules
// already elaborated in this run are returned unchanged.
//
func (e *Elaborator) elaborateModule(m *Module) (*Module, error) {
	if e.done[m] {
		return m, nil
	}
	if e.busyMod[m] {
		return nil, &CycleError{Path: append(append([]string(nil), e.path...), m.displayName())}
	}
	if err := m.Err(); err != nil {
		return nil, errors.Wrap(err, "module "+m.displayName())
	}
	if err := e.enter("module " + m.displayName()); err != nil {
		return nil, err
	}
	defer e.leave()
	e.busyMod[m] = true
	defer delete(e.busyMod, m)

	for _, inst := range m.instances {
		if err := e.elaborateInstance(inst); err != nil {
			return nil, errors.Wrapf(err, "instance %s of module %s", inst.Name, m.displayName())
		}
	}
	e.done[m] = true
	return m, nil
}

// elaborateInstance resolves one instance. Generator call referents
// are rebound to their elaborated Module so the finished hierarchy
// holds no residual generator references.
//
func (e *Elaborator) elaborateInstance(inst *Instance) error {
	switch d := inst.of.(type) {
	case *GenCall:
		m, err := e.elaborateGenerator(d.gen, d.params)
		if err != nil {
			return err
		}
		if err := checkConns(inst, m.Ports()); err != nil {
			return err
		}
		inst.of = m
		return nil
	case *Module:
		_, err := e.elaborateModule(d)
		return err
	case *ExternalModuleCall:
		// leaf; bindings were checked when the instance was added.
		return nil
	}
	return &TypeMismatchError{
		Want: "*ahdl.Module, *ahdl.GenCall or *ahdl.ExternalModuleCall instance definition",
		Got:  fmt.Sprintf("%T", inst.of),
	}
}
