// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package ahdl

import "strconv"

// Visibility tells whether a Signal is internal to its module or part
// of the module's port interface.
//
type Visibility uint8

// Signal visibility values.
//
const (
	VisInternal Visibility = iota
	VisPort
)

func (v Visibility) String() string {
	switch v {
	case VisInternal:
		return "internal"
	case VisPort:
		return "port"
	}
	return "visibility(" + strconv.Itoa(int(v)) + ")"
}

// Dir is the direction of a port Signal. Internal signals carry no
// direction semantics; their Dir is globally expected to be ignored.
//
type Dir uint8

// Port directions.
//
const (
	DirNone Dir = iota
	DirInput
	DirOutput
	DirInout
)

func (d Dir) String() string {
	switch d {
	case DirNone:
		return "none"
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	case DirInout:
		return "inout"
	}
	return "dir(" + strconv.Itoa(int(d)) + ")"
}

// Usage tags what a Signal is used for. Purely informational except
// for UsageGround, which the dcop package maps to the reference node.
//
type Usage uint8

// Signal usage tags.
//
const (
	UsageSignal Usage = iota
	UsagePower
	UsageGround
	UsageClock
)

func (u Usage) String() string {
	switch u {
	case UsageSignal:
		return "signal"
	case UsagePower:
		return "power"
	case UsageGround:
		return "ground"
	case UsageClock:
		return "clock"
	}
	return "usage(" + strconv.Itoa(int(u)) + ")"
}

// A Signal is the base unit of hardware connectivity: a named bus of
// one or more bits. Signals are untyped; they represent a connection,
// not the data it carries. Signal identity is pointer identity: two
// signals are the same signal only if they are the same object.
//
// A Signal is owned by at most one Module at a time. Copy returns a
// detached duplicate.
//
type Signal struct {
	Name  string
	Width int
	Vis   Visibility
	Dir   Dir
	Usage Usage
	Desc  string

	parent *Module
}

// A SignalOption configures optional Signal fields at construction.
//
type SignalOption func(*Signal)

// Width sets the bit width of a signal. Widths below one fail
// construction.
//
func Width(w int) SignalOption {
	return func(s *Signal) { s.Width = w }
}

// Desc attaches a description to a signal.
//
func Desc(d string) SignalOption {
	return func(s *Signal) { s.Desc = d }
}

// WithUsage sets the usage tag of a signal.
//
func WithUsage(u Usage) SignalOption {
	return func(s *Signal) { s.Usage = u }
}

// NewSignal returns a new internal Signal. It fails with a
// ConstructionError if the configured width is not positive.
//
func NewSignal(name string, opts ...SignalOption) (*Signal, error) {
	s := &Signal{Name: name, Width: 1}
	for _, o := range opts {
		o(s)
	}
	if s.Width < 1 {
		return nil, &ConstructionError{
			What:   "signal " + name,
			Reason: "width must be positive, got " + strconv.Itoa(s.Width),
		}
	}
	return s, nil
}

func mustSignal(name string, vis Visibility, dir Dir, opts []SignalOption) *Signal {
	s, err := NewSignal(name, opts...)
	if err != nil {
		panic(err)
	}
	s.Vis = vis
	s.Dir = dir
	return s
}

// Input returns a new input port Signal. It panics if an option sets
// an invalid width.
//
func Input(name string, opts ...SignalOption) *Signal {
	return mustSignal(name, VisPort, DirInput, opts)
}

// Output returns a new output port Signal.
//
func Output(name string, opts ...SignalOption) *Signal {
	return mustSignal(name, VisPort, DirOutput, opts)
}

// Inout returns a new bidirectional port Signal.
//
func Inout(name string, opts ...SignalOption) *Signal {
	return mustSignal(name, VisPort, DirInout, opts)
}

// Port returns a new port Signal with the given direction.
//
func Port(name string, dir Dir, opts ...SignalOption) *Signal {
	return mustSignal(name, VisPort, dir, opts)
}

// Power returns a new internal Signal tagged as a power rail.
//
func Power(name string, opts ...SignalOption) *Signal {
	s := mustSignal(name, VisInternal, DirNone, opts)
	s.Usage = UsagePower
	return s
}

// Ground returns a new internal Signal tagged as a ground rail.
//
func Ground(name string, opts ...SignalOption) *Signal {
	s := mustSignal(name, VisInternal, DirNone, opts)
	s.Usage = UsageGround
	return s
}

// Clock returns a new internal Signal tagged as a clock.
//
func Clock(name string, opts ...SignalOption) *Signal {
	s := mustSignal(name, VisInternal, DirNone, opts)
	s.Usage = UsageClock
	return s
}

// Signals returns n new anonymous internal Signals. Anonymous signals
// are named when added to a Module.
//
func Signals(n int, opts ...SignalOption) []*Signal {
	rv := make([]*Signal, n)
	for i := range rv {
		rv[i] = mustSignal("", VisInternal, DirNone, opts)
	}
	return rv
}

// Inputs returns one input port per name.
//
func Inputs(names ...string) []*Signal {
	rv := make([]*Signal, len(names))
	for i, n := range names {
		rv[i] = Input(n)
	}
	return rv
}

// Outputs returns one output port per name.
//
func Outputs(names ...string) []*Signal {
	rv := make([]*Signal, len(names))
	for i, n := range names {
		rv[i] = Output(n)
	}
	return rv
}

// Ports returns one direction-less port per name.
//
func Ports(names ...string) []*Signal {
	rv := make([]*Signal, len(names))
	for i, n := range names {
		rv[i] = Port(n, DirNone)
	}
	return rv
}

// Module returns the Module owning s, or nil if s is detached.
//
func (s *Signal) Module() *Module {
	return s.parent
}

// Copy returns a detached duplicate of s: the public fields are kept,
// the module association is dropped.
//
func (s *Signal) Copy() *Signal {
	return &Signal{
		Name:  s.Name,
		Width: s.Width,
		Vis:   s.Vis,
		Dir:   s.Dir,
		Usage: s.Usage,
		Desc:  s.Desc,
	}
}
