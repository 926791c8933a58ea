// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package ahdl

import "fmt"

// SpiceType selects the SPICE element class an ExternalModule exports
// as.
//
type SpiceType uint8

// SPICE element classes.
//
const (
	Subckt SpiceType = iota // X card, definition provided externally
	Res
	Cap
	Ind
	Diode
	Mos
	Vsource
	Isource
)

func (t SpiceType) String() string {
	switch t {
	case Subckt:
		return "subckt"
	case Res:
		return "res"
	case Cap:
		return "cap"
	case Ind:
		return "ind"
	case Diode:
		return "diode"
	case Mos:
		return "mos"
	case Vsource:
		return "vsource"
	case Isource:
		return "isource"
	}
	return fmt.Sprintf("spicetype(%d)", t)
}

// An ExternalModuleSpec describes an ExternalModule to be built by
// NewExternalModule.
//
type ExternalModuleSpec struct {
	// Module name, used directly when exporting.
	Name string
	// Ordered port list. Every port must be named and have port
	// visibility.
	Ports []*Signal
	// Parameter class. A nil class declares the generic mapping
	// parameter type: calls then take raw params.
	Params *ParamClass
	// Optional description.
	Desc string
	// Optional domain name, for references upon export.
	Domain string
	// SPICE element class for export. Defaults to Subckt.
	SpiceType SpiceType
}

// An ExternalModule wraps a leaf circuit defined outside the library,
// such as a foundry primitive or an existing SPICE subcircuit. Unlike
// Modules, external modules carry parameters, to support legacy HDLs.
// ExternalModule identity is pointer identity.
//
type ExternalModule struct {
	spec ExternalModuleSpec
}

// NewExternalModule validates spec and returns the wrapped module. It
// fails with a ConstructionError on an empty module name or on a port
// that is nil, unnamed, duplicated or lacking port visibility.
//
func NewExternalModule(spec ExternalModuleSpec) (*ExternalModule, error) {
	if spec.Name == "" {
		return nil, &ConstructionError{What: "external module", Reason: "missing name"}
	}
	seen := make(map[string]bool, len(spec.Ports))
	for _, p := range spec.Ports {
		if p == nil {
			return nil, &ConstructionError{What: "external module " + spec.Name, Reason: "nil port"}
		}
		if p.Name == "" {
			return nil, &ConstructionError{What: "external module " + spec.Name, Reason: "unnamed port"}
		}
		if p.Vis != VisPort {
			return nil, &ConstructionError{
				What:   "external module " + spec.Name,
				Reason: "port " + p.Name + " must have port visibility",
			}
		}
		if seen[p.Name] {
			return nil, &ConstructionError{
				What:   "external module " + spec.Name,
				Reason: "duplicate port " + p.Name,
			}
		}
		seen[p.Name] = true
	}
	return &ExternalModule{spec: spec}, nil
}

// MustExternalModule is like NewExternalModule but panics on error.
// Intended for package-level primitive declarations.
//
func MustExternalModule(spec ExternalModuleSpec) *ExternalModule {
	e, err := NewExternalModule(spec)
	if err != nil {
		panic(err)
	}
	return e
}

// Name returns the module name.
//
func (e *ExternalModule) Name() string { return e.spec.Name }

// Ports returns the ordered port list.
//
func (e *ExternalModule) Ports() []*Signal {
	return append([]*Signal(nil), e.spec.Ports...)
}

// ParamClass returns the declared parameter class, or nil for the
// generic mapping parameter type.
//
func (e *ExternalModule) ParamClass() *ParamClass { return e.spec.Params }

// Desc returns the module description.
//
func (e *ExternalModule) Desc() string { return e.spec.Desc }

// Domain returns the module's domain name.
//
func (e *ExternalModule) Domain() string { return e.spec.Domain }

// SpiceType returns the SPICE element class used on export.
//
func (e *ExternalModule) SpiceType() SpiceType { return e.spec.SpiceType }

// Call pairs the module with parameter values. It fails with a
// TypeMismatchError if p is not an instance of the declared parameter
// class, or, for the generic mapping type, not a raw parameter set.
//
func (e *ExternalModule) Call(p Params) (*ExternalModuleCall, error) {
	if e.spec.Params != nil {
		if p.Class() != e.spec.Params {
			return nil, &TypeMismatchError{
				Want: "params of class " + e.spec.Params.Name() + " for external module " + e.spec.Name,
				Got:  describeParams(p),
			}
		}
	} else if p.Class() != nil || p.IsZero() {
		return nil, &TypeMismatchError{
			Want: "raw params for external module " + e.spec.Name,
			Got:  describeParams(p),
		}
	}
	return &ExternalModuleCall{module: e, params: p}, nil
}

// MustCall is like Call but panics on error.
//
func (e *ExternalModule) MustCall(p Params) *ExternalModuleCall {
	c, err := e.Call(p)
	if err != nil {
		panic(err)
	}
	return c
}

// An ExternalModuleCall combines an ExternalModule with validated
// parameter values. It is a leaf instance definition: elaboration
// passes it through untouched.
//
type ExternalModuleCall struct {
	module *ExternalModule
	params Params
}

// Module returns the called external module.
//
func (c *ExternalModuleCall) Module() *ExternalModule { return c.module }

// Params returns the bound parameter values.
//
func (c *ExternalModuleCall) Params() Params { return c.params }

// Equal reports call equality: identity of the external module and
// value equality of the parameters.
//
func (c *ExternalModuleCall) Equal(o *ExternalModuleCall) bool {
	if o == nil {
		return false
	}
	return c.module == o.module && c.params.Equal(o.params)
}

// Fingerprint returns a short stable hash combining the module's
// identity with the parameter values, consistent with Equal.
//
func (c *ExternalModuleCall) Fingerprint() string {
	return fmt.Sprintf("%s_%p_%s", c.module.spec.Name, c.module, c.params.Fingerprint())
}

func (c *ExternalModuleCall) String() string {
	return c.module.spec.Name + "(" + c.params.Fingerprint() + ")"
}
