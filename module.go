// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package ahdl

import (
	"strconv"

	"github.com/pkg/errors"
)

// Conns maps port names of an instantiated definition to Signals of
// the instantiating Module.
//
type Conns map[string]*Signal

// An Instantiable is anything that can back an Instance: a Module, a
// bound generator call or an external module call.
//
type Instantiable interface {
	instKind() string
}

func (*Module) instKind() string             { return "module" }
func (*GenCall) instKind() string            { return "generator call" }
func (*ExternalModuleCall) instKind() string { return "external module call" }

// An Instance is a named occurrence of a Module, GenCall or
// ExternalModuleCall inside a parent Module, with port bindings.
//
type Instance struct {
	Name  string
	Conns Conns

	of Instantiable
}

// Of returns the instance referent. After elaboration, generator call
// referents are rebound to their elaborated Module.
//
func (i *Instance) Of() Instantiable { return i.of }

// A Module is a named circuit definition: an ordered port interface,
// internal signals and instances of other definitions. Module identity
// is pointer identity, never the name.
//
// Modules are built incrementally. The Add methods return the added
// object for further wiring and latch the first construction error
// instead of returning it; the latched error surfaces through Err and
// fails Elaborate. Modules must be treated as immutable once
// elaborated.
//
type Module struct {
	name      string
	ports     []*Signal
	signals   []*Signal
	sigIndex  map[string]*Signal
	instances []*Instance
	instIndex map[string]*Instance

	genParams Params // set when produced by a generator
	autoname  int
	err       error
}

// NewModule returns a new empty Module. The name may be empty for
// modules returned by generator bodies; elaboration names them after
// their generator.
//
func NewModule(name string) *Module {
	return &Module{
		name:      name,
		sigIndex:  make(map[string]*Signal),
		instIndex: make(map[string]*Instance),
	}
}

// Name returns the module name, which may be empty until elaboration.
//
func (m *Module) Name() string { return m.name }

// SetName names the module. Used by generator bodies that defer
// naming to the elaborator.
//
func (m *Module) SetName(name string) { m.name = name }

// Err returns the first construction error latched by the Add methods,
// or nil.
//
func (m *Module) Err() error { return m.err }

func (m *Module) fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

func (m *Module) displayName() string {
	if m.name == "" {
		return "<anonymous>"
	}
	return m.name
}

func (m *Module) adopt(s *Signal) bool {
	if s.parent != nil && s.parent != m {
		m.fail(&ConstructionError{
			What:   "module " + m.displayName(),
			Reason: "signal " + s.Name + " already owned by module " + s.parent.displayName(),
		})
		return false
	}
	if _, ok := m.sigIndex[s.Name]; ok {
		m.fail(&ConstructionError{
			What:   "module " + m.displayName(),
			Reason: "duplicate signal name " + s.Name,
		})
		return false
	}
	s.parent = m
	m.sigIndex[s.Name] = s
	return true
}

// AddPort adds s to the module's port interface. The signal must be
// named and have port visibility, and must not be owned by another
// module.
//
func (m *Module) AddPort(s *Signal) *Signal {
	if s == nil {
		m.fail(&ConstructionError{What: "module " + m.displayName(), Reason: "nil port"})
		return nil
	}
	if s.Name == "" {
		m.fail(&ConstructionError{What: "module " + m.displayName(), Reason: "unnamed port"})
		return s
	}
	if s.Vis != VisPort {
		m.fail(&ConstructionError{
			What:   "module " + m.displayName(),
			Reason: "port " + s.Name + " must have port visibility",
		})
		return s
	}
	if m.adopt(s) {
		m.ports = append(m.ports, s)
	}
	return s
}

// AddSignal adds s as an internal signal. Anonymous signals are named
// n0, n1, ... in order of addition.
//
func (m *Module) AddSignal(s *Signal) *Signal {
	if s == nil {
		m.fail(&ConstructionError{What: "module " + m.displayName(), Reason: "nil signal"})
		return nil
	}
	if s.Vis != VisInternal {
		m.fail(&ConstructionError{
			What:   "module " + m.displayName(),
			Reason: "signal " + s.Name + " must have internal visibility; use AddPort for ports",
		})
		return s
	}
	if s.Name == "" {
		s.Name = "n" + strconv.Itoa(m.autoname)
		m.autoname++
	}
	if m.adopt(s) {
		m.signals = append(m.signals, s)
	}
	return s
}

// AddSignals adds every signal in ss and returns ss.
//
func (m *Module) AddSignals(ss []*Signal) []*Signal {
	for _, s := range ss {
		m.AddSignal(s)
	}
	return ss
}

// Input creates and adds an input port.
//
func (m *Module) Input(name string, opts ...SignalOption) *Signal {
	return m.AddPort(Input(name, opts...))
}

// Output creates and adds an output port.
//
func (m *Module) Output(name string, opts ...SignalOption) *Signal {
	return m.AddPort(Output(name, opts...))
}

// Inout creates and adds a bidirectional port.
//
func (m *Module) Inout(name string, opts ...SignalOption) *Signal {
	return m.AddPort(Inout(name, opts...))
}

// Signal creates and adds an internal signal.
//
func (m *Module) Signal(name string, opts ...SignalOption) *Signal {
	s, err := NewSignal(name, opts...)
	if err != nil {
		m.fail(err)
		return nil
	}
	return m.AddSignal(s)
}

// Instance adds a named instance of the given definition with the
// given port bindings. Binding names are checked against the
// definition's ports where the definition is already concrete (a
// Module or an ExternalModuleCall); generator call bindings are
// checked during elaboration once the generated ports are known.
// Bound signals must belong to m.
//
func (m *Module) Instance(name string, of Instantiable, conns Conns) *Instance {
	inst := &Instance{Name: name, Conns: conns, of: of}
	if name == "" {
		m.fail(&ConstructionError{What: "module " + m.displayName(), Reason: "unnamed instance"})
		return inst
	}
	if of == nil {
		m.fail(&ConstructionError{
			What:   "module " + m.displayName(),
			Reason: "instance " + name + " has no definition",
		})
		return inst
	}
	if _, ok := m.instIndex[name]; ok {
		m.fail(&ConstructionError{
			What:   "module " + m.displayName(),
			Reason: "duplicate instance name " + name,
		})
		return inst
	}
	for port, sig := range conns {
		if sig == nil {
			m.fail(&ConstructionError{
				What:   "instance " + name + " in module " + m.displayName(),
				Reason: "nil signal bound to port " + port,
			})
			return inst
		}
		if sig.parent != m {
			m.fail(&ConstructionError{
				What:   "instance " + name + " in module " + m.displayName(),
				Reason: "signal " + sig.Name + " bound to port " + port + " does not belong to this module",
			})
			return inst
		}
	}
	switch d := of.(type) {
	case *Module:
		if err := checkConns(inst, d.Ports()); err != nil {
			m.fail(errors.Wrap(err, "module "+m.displayName()))
			return inst
		}
	case *ExternalModuleCall:
		if err := checkConns(inst, d.Module().Ports()); err != nil {
			m.fail(errors.Wrap(err, "module "+m.displayName()))
			return inst
		}
	}
	m.instances = append(m.instances, inst)
	m.instIndex[name] = inst
	return inst
}

// checkConns validates instance bindings against a definition's port
// list: every bound name must be a port, and widths must match.
//
func checkConns(inst *Instance, ports []*Signal) error {
	byName := make(map[string]*Signal, len(ports))
	for _, p := range ports {
		byName[p.Name] = p
	}
	for name, sig := range inst.Conns {
		p, ok := byName[name]
		if !ok {
			return &ConstructionError{
				What:   "instance " + inst.Name,
				Reason: "unknown port " + name,
			}
		}
		if p.Width != sig.Width {
			return &ConstructionError{
				What:   "instance " + inst.Name,
				Reason: "width mismatch on port " + name + ": " +
					strconv.Itoa(p.Width) + " vs " + strconv.Itoa(sig.Width),
			}
		}
	}
	return nil
}

// Ports returns the ordered port list.
//
func (m *Module) Ports() []*Signal {
	return append([]*Signal(nil), m.ports...)
}

// InternalSignals returns the internal signals in order of addition.
//
func (m *Module) InternalSignals() []*Signal {
	return append([]*Signal(nil), m.signals...)
}

// SignalByName returns the port or internal signal with the given
// name.
//
func (m *Module) SignalByName(name string) (*Signal, bool) {
	s, ok := m.sigIndex[name]
	return s, ok
}

// Instances returns the instances in order of addition.
//
func (m *Module) Instances() []*Instance {
	return append([]*Instance(nil), m.instances...)
}

// InstanceByName returns the named instance.
//
func (m *Module) InstanceByName(name string) (*Instance, bool) {
	i, ok := m.instIndex[name]
	return i, ok
}

// GenParams returns the parameter values the module was generated
// with, if it came out of a generator.
//
func (m *Module) GenParams() (Params, bool) {
	return m.genParams, !m.genParams.IsZero()
}
