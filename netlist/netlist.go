// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package netlist writes elaborated module hierarchies as SPICE
// netlists. Every Module becomes a .SUBCKT definition, children before
// parents, and instances become element cards keyed by their referent's
// SpiceType. The input must be fully elaborated: generator call
// referents are rejected.
package netlist

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mixsig/ahdl"
	"github.com/mixsig/ahdl/internal/sunit"
)

// Export writes top and every Module reachable from it to w as a SPICE
// netlist. Definitions are deduplicated by Module identity; distinct
// Modules sharing a name are disambiguated with numeric suffixes.
//
func Export(w io.Writer, top *ahdl.Module) error {
	if top == nil {
		return errors.New("netlist: nil top module")
	}
	e := &exporter{
		out:   bufio.NewWriter(w),
		names: make(map[*ahdl.Module]string),
		used:  make(map[string]bool),
		done:  make(map[*ahdl.Module]bool),
	}
	fmt.Fprintf(e.out, "* %s\n", e.defName(top))
	if err := e.emit(top); err != nil {
		return err
	}
	return errors.Wrap(e.out.Flush(), "netlist")
}

type exporter struct {
	out   *bufio.Writer
	names map[*ahdl.Module]string
	used  map[string]bool
	done  map[*ahdl.Module]bool
}

// defName returns the definition name for m, assigning one on first
// use. Generator-produced modules get their param fingerprint appended
// so differently parameterized elaborations stay distinct.
//
func (e *exporter) defName(m *ahdl.Module) string {
	if n, ok := e.names[m]; ok {
		return n
	}
	base := m.Name()
	if base == "" {
		base = "anon"
	}
	if p, ok := m.GenParams(); ok {
		base += "_" + p.Fingerprint()
	}
	name := base
	for i := 1; e.used[name]; i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	e.used[name] = true
	e.names[m] = name
	return name
}

// emit writes m's definition, emitting child definitions first.
//
func (e *exporter) emit(m *ahdl.Module) error {
	if e.done[m] {
		return nil
	}
	e.done[m] = true
	for _, inst := range m.Instances() {
		child, ok := inst.Of().(*ahdl.Module)
		if !ok {
			continue
		}
		if err := e.emit(child); err != nil {
			return err
		}
	}

	name := e.defName(m)
	fmt.Fprintf(e.out, "\n.subckt %s", name)
	for _, p := range m.Ports() {
		for _, tok := range expand(p.Name, p.Width) {
			fmt.Fprintf(e.out, " %s", tok)
		}
	}
	fmt.Fprintln(e.out)
	for _, inst := range m.Instances() {
		if err := e.card(inst); err != nil {
			return errors.Wrapf(err, "netlist: module %s", name)
		}
	}
	fmt.Fprintf(e.out, ".ends %s\n", name)
	return nil
}

// expand returns the node tokens of a signal: its name for width one,
// indexed names for buses.
//
func expand(name string, width int) []string {
	if width == 1 {
		return []string{name}
	}
	toks := make([]string, width)
	for i := range toks {
		toks[i] = fmt.Sprintf("%s[%d]", name, i)
	}
	return toks
}

// nodes resolves the instance's bindings against ports, in port order,
// expanding buses. Every port must be bound.
//
func nodes(inst *ahdl.Instance, ports []*ahdl.Signal) ([]string, error) {
	var toks []string
	for _, p := range ports {
		sig, ok := inst.Conns[p.Name]
		if !ok {
			return nil, errors.Errorf("instance %s: port %s is unbound", inst.Name, p.Name)
		}
		if sig.Width != p.Width {
			return nil, errors.Errorf("instance %s: port %s width %d bound to signal %s width %d",
				inst.Name, p.Name, p.Width, sig.Name, sig.Width)
		}
		toks = append(toks, expand(sig.Name, sig.Width)...)
	}
	return toks, nil
}

func (e *exporter) card(inst *ahdl.Instance) error {
	switch d := inst.Of().(type) {
	case *ahdl.Module:
		toks, err := nodes(inst, d.Ports())
		if err != nil {
			return err
		}
		fields := append([]string{"x" + inst.Name}, toks...)
		fields = append(fields, e.defName(d))
		fmt.Fprintln(e.out, strings.Join(fields, " "))
		return nil
	case *ahdl.ExternalModuleCall:
		return e.deviceCard(inst, d)
	case *ahdl.GenCall:
		return errors.Errorf("instance %s refers to an unelaborated generator call", inst.Name)
	}
	return errors.Errorf("instance %s has unsupported referent %T", inst.Name, inst.Of())
}

// deviceCard writes one element card for an external module call.
//
func (e *exporter) deviceCard(inst *ahdl.Instance, call *ahdl.ExternalModuleCall) error {
	toks, err := nodes(inst, call.Module().Ports())
	if err != nil {
		return err
	}
	n := strings.Join(toks, " ")
	p := call.Params()
	switch call.Module().SpiceType() {
	case ahdl.Res:
		return e.valueCard("r", inst.Name, n, p, "r")
	case ahdl.Cap:
		return e.valueCard("c", inst.Name, n, p, "c")
	case ahdl.Ind:
		return e.valueCard("l", inst.Name, n, p, "l")
	case ahdl.Diode:
		model, err := p.Get("model")
		if err != nil {
			return errors.Wrapf(err, "instance %s", inst.Name)
		}
		fmt.Fprintf(e.out, "d%s %s %s%s\n", inst.Name, n, model.Str(), kvParams(p, "model"))
		return nil
	case ahdl.Mos:
		model, err := p.Get("model")
		if err != nil {
			return errors.Wrapf(err, "instance %s", inst.Name)
		}
		fmt.Fprintf(e.out, "m%s %s %s%s\n", inst.Name, n, model.Str(), kvParams(p, "model"))
		return nil
	case ahdl.Vsource:
		return e.sourceCard("v", inst.Name, n, p)
	case ahdl.Isource:
		return e.sourceCard("i", inst.Name, n, p)
	case ahdl.Subckt:
		fmt.Fprintf(e.out, "x%s %s %s%s\n", inst.Name, n, call.Module().Name(), kvParams(p))
		return nil
	}
	return errors.Errorf("instance %s: unsupported spice type %s", inst.Name, call.Module().SpiceType())
}

// valueCard writes a two-terminal card whose single value comes from
// the named parameter field: r1 a b 1k.
//
func (e *exporter) valueCard(letter, name, nodes string, p ahdl.Params, field string) error {
	v, err := p.Get(field)
	if err != nil {
		return errors.Wrapf(err, "instance %s", name)
	}
	fmt.Fprintf(e.out, "%s%s %s %s%s\n", letter, name, nodes, sunit.Format(v.Float()), kvParams(p, field))
	return nil
}

// sourceCard writes an independent source card with its DC value and,
// when nonzero, an AC magnitude.
//
func (e *exporter) sourceCard(letter, name, nodes string, p ahdl.Params) error {
	dc, err := p.Get("dc")
	if err != nil {
		return errors.Wrapf(err, "instance %s", name)
	}
	fmt.Fprintf(e.out, "%s%s %s dc %s", letter, name, nodes, sunit.Format(dc.Float()))
	if ac, err := p.Get("ac"); err == nil && ac.Float() != 0 {
		fmt.Fprintf(e.out, " ac %s", sunit.Format(ac.Float()))
	}
	fmt.Fprintln(e.out)
	return nil
}

// kvParams renders the remaining parameter fields as " k=v" pairs,
// skipping the names already emitted positionally.
//
func kvParams(p ahdl.Params, skip ...string) string {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	var b strings.Builder
	p.Each(func(name string, v ahdl.Value) {
		if skipped[name] {
			return
		}
		b.WriteString(" ")
		b.WriteString(name)
		b.WriteString("=")
		if v.Kind() == ahdl.KindFloat {
			b.WriteString(sunit.Format(v.Float()))
		} else {
			b.WriteString(v.String())
		}
	})
	return b.String()
}
