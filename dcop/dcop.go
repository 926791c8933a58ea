// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package dcop computes DC operating points of elaborated hierarchies
// directly, without an external simulator. It handles the linear
// subset: resistors, inductors (shorts at DC), capacitors (opens at
// DC) and independent sources. Nonlinear devices and opaque
// subcircuits are rejected; use the sim package for those.
//
// The solver builds the usual modified nodal formulation: one row per
// non-ground node, then one branch row per voltage-defined element,
// and factors it with github.com/edp1096/sparse.
package dcop

import (
	"strings"

	"github.com/edp1096/sparse"
	"github.com/pkg/errors"

	"github.com/mixsig/ahdl"
)

// Solve flattens top and returns its DC operating point: "V(path)" for
// every non-ground node and "I(path)" for every voltage-defined branch,
// with dotted instance paths for inner names.
//
func Solve(top *ahdl.Module) (map[string]float64, error) {
	if top == nil {
		return nil, errors.New("dcop: nil top module")
	}
	f := &flattener{}
	if err := f.flatten(top, "", nil); err != nil {
		return nil, errors.Wrap(err, "dcop")
	}
	if !f.grounded {
		return nil, errors.New("dcop: no ground node; tag a signal with UsageGround or name it 0, gnd or vss")
	}
	res, err := solve(f)
	return res, errors.Wrap(err, "dcop")
}

// A device is one flattened leaf element.
//
type device struct {
	kind   ahdl.SpiceType
	name   string // dotted instance path
	nodes  []int  // in port order, 0 = ground
	params ahdl.Params
}

type flattener struct {
	names    []string // 1-based node names; index 0 unused
	devs     []device
	grounded bool
}

func groundName(name string) bool {
	switch strings.ToLower(name) {
	case "0", "gnd", "vss":
		return true
	}
	return false
}

// newNode allocates the MNA node of one signal. Ground signals map to
// node 0.
//
func (f *flattener) newNode(s *ahdl.Signal, prefix string) (int, error) {
	if s.Width != 1 {
		return 0, errors.Errorf("signal %s%s: buses are not supported in operating-point analysis", prefix, s.Name)
	}
	if s.Usage == ahdl.UsageGround || groundName(s.Name) {
		f.grounded = true
		return 0, nil
	}
	f.names = append(f.names, prefix+s.Name)
	return len(f.names), nil
}

// flatten walks m, binding child ports to their parent nodes and
// collecting leaf devices. bound carries the caller's port bindings;
// it is nil at the top, where ports become nodes of their own. The
// signal-to-node map is scoped to this frame: a module instantiated
// twice yields two independent sets of inner nodes.
//
func (f *flattener) flatten(m *ahdl.Module, prefix string, bound map[*ahdl.Signal]int) error {
	local := make(map[*ahdl.Signal]int)
	for _, p := range m.Ports() {
		if id, ok := bound[p]; ok {
			local[p] = id
			continue
		}
		id, err := f.newNode(p, prefix)
		if err != nil {
			return err
		}
		local[p] = id
	}
	for _, s := range m.InternalSignals() {
		id, err := f.newNode(s, prefix)
		if err != nil {
			return err
		}
		local[s] = id
	}
	nodeOf := func(path string, port string, conns ahdl.Conns) (int, error) {
		sig, ok := conns[port]
		if !ok {
			return 0, errors.Errorf("instance %s: port %s is unbound", path, port)
		}
		id, ok := local[sig]
		if !ok {
			return 0, errors.Errorf("instance %s: signal %s bound to port %s is not part of this module",
				path, sig.Name, port)
		}
		return id, nil
	}
	for _, inst := range m.Instances() {
		path := prefix + inst.Name
		switch d := inst.Of().(type) {
		case *ahdl.Module:
			childBound := make(map[*ahdl.Signal]int, len(d.Ports()))
			for _, p := range d.Ports() {
				id, err := nodeOf(path, p.Name, inst.Conns)
				if err != nil {
					return err
				}
				childBound[p] = id
			}
			if err := f.flatten(d, path+".", childBound); err != nil {
				return err
			}
		case *ahdl.ExternalModuleCall:
			dev := device{kind: d.Module().SpiceType(), name: path, params: d.Params()}
			switch dev.kind {
			case ahdl.Res, ahdl.Cap, ahdl.Ind, ahdl.Vsource, ahdl.Isource:
			case ahdl.Diode, ahdl.Mos:
				return errors.Errorf("instance %s: nonlinear device %s has no DC stamp; use the sim package",
					path, d.Module().Name())
			default:
				return errors.Errorf("instance %s: cannot solve opaque %s device %s",
					path, dev.kind, d.Module().Name())
			}
			for _, p := range d.Module().Ports() {
				id, err := nodeOf(path, p.Name, inst.Conns)
				if err != nil {
					return err
				}
				dev.nodes = append(dev.nodes, id)
			}
			f.devs = append(f.devs, dev)
		case *ahdl.GenCall:
			return errors.Errorf("instance %s refers to an unelaborated generator call", path)
		}
	}
	return nil
}

// solve stamps the flattened devices into an MNA system and factors
// it. Branch unknowns for voltage-defined elements follow the node
// unknowns.
//
func solve(f *flattener) (map[string]float64, error) {
	n := len(f.names)
	branches := 0
	branchOf := make(map[int]int) // device index -> branch row
	for i, d := range f.devs {
		if d.kind == ahdl.Vsource || d.kind == ahdl.Ind {
			branches++
			branchOf[i] = n + branches
		}
	}
	size := n + branches
	if size == 0 {
		return map[string]float64{}, nil
	}

	mat, err := sparse.Create(int64(size), &sparse.Configuration{
		Real:           true,
		Expandable:     true,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
	})
	if err != nil {
		return nil, errors.Wrap(err, "matrix create")
	}
	defer mat.Destroy()

	rhs := make([]float64, size+1) // 1-based
	stamp := func(i, j int, v float64) {
		if i == 0 || j == 0 {
			return
		}
		mat.GetElement(int64(i), int64(j)).Real += v
	}

	for i, d := range f.devs {
		switch d.kind {
		case ahdl.Res:
			r, err := d.params.Get("r")
			if err != nil {
				return nil, errors.Wrapf(err, "device %s", d.name)
			}
			if r.Float() <= 0 {
				return nil, errors.Errorf("device %s: resistance must be positive", d.name)
			}
			g := 1 / r.Float()
			p, q := d.nodes[0], d.nodes[1]
			stamp(p, p, g)
			stamp(q, q, g)
			stamp(p, q, -g)
			stamp(q, p, -g)
		case ahdl.Cap:
			// open at DC
		case ahdl.Vsource, ahdl.Ind:
			b := branchOf[i]
			p, q := d.nodes[0], d.nodes[1]
			stamp(p, b, 1)
			stamp(b, p, 1)
			stamp(q, b, -1)
			stamp(b, q, -1)
			if d.kind == ahdl.Vsource {
				dc, err := d.params.Get("dc")
				if err != nil {
					return nil, errors.Wrapf(err, "device %s", d.name)
				}
				rhs[b] = dc.Float()
			}
		case ahdl.Isource:
			dc, err := d.params.Get("dc")
			if err != nil {
				return nil, errors.Wrapf(err, "device %s", d.name)
			}
			// current flows from p through the source to n
			p, q := d.nodes[0], d.nodes[1]
			if p != 0 {
				rhs[p] -= dc.Float()
			}
			if q != 0 {
				rhs[q] += dc.Float()
			}
		}
	}

	if err := mat.Factor(); err != nil {
		return nil, errors.Wrap(err, "matrix factor")
	}
	sol, err := mat.Solve(rhs)
	if err != nil {
		return nil, errors.Wrap(err, "matrix solve")
	}

	res := make(map[string]float64, size)
	for i, name := range f.names {
		res["V("+name+")"] = sol[i+1]
	}
	for i, d := range f.devs {
		if b, ok := branchOf[i]; ok {
			res["I("+d.name+")"] = sol[b]
		}
	}
	return res, nil
}
