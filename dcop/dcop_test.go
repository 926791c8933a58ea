// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package dcop

import (
	"math"
	"strings"
	"testing"

	"github.com/mixsig/ahdl"
	"github.com/mixsig/ahdl/primlib"
)

func checkV(t *testing.T, res map[string]float64, key string, want float64) {
	t.Helper()
	got, ok := res[key]
	if !ok {
		t.Fatalf("missing %s in %v", key, res)
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %g, want %g", key, got, want)
	}
}

func Test_voltage_divider(t *testing.T) {
	m := ahdl.NewModule("div")
	gnd := m.AddSignal(ahdl.Ground("vss"))
	a := m.Signal("a")
	mid := m.Signal("mid")
	m.Instance("v1", primlib.Vdc(2), ahdl.Conns{"p": a, "n": gnd})
	m.Instance("r1", primlib.Res(1e3), ahdl.Conns{"p": a, "n": mid})
	m.Instance("r2", primlib.Res(1e3), ahdl.Conns{"p": mid, "n": gnd})
	// a capacitor is open at DC and must not disturb the result
	m.Instance("c1", primlib.Cap(1e-9), ahdl.Conns{"p": mid, "n": gnd})
	if err := m.Err(); err != nil {
		t.Fatal(err)
	}

	res, err := Solve(m)
	if err != nil {
		t.Fatal(err)
	}
	checkV(t, res, "V(a)", 2)
	checkV(t, res, "V(mid)", 1)
	// the source sinks the divider current
	checkV(t, res, "I(v1)", -1e-3)
}

func Test_current_source(t *testing.T) {
	m := ahdl.NewModule("ir")
	gnd := m.AddSignal(ahdl.Ground("vss"))
	a := m.Signal("a")
	m.Instance("i1", primlib.Isrc(1e-3), ahdl.Conns{"p": gnd, "n": a})
	m.Instance("r1", primlib.Res(1e3), ahdl.Conns{"p": a, "n": gnd})
	res, err := Solve(m)
	if err != nil {
		t.Fatal(err)
	}
	checkV(t, res, "V(a)", 1)
}

func Test_inductor_short(t *testing.T) {
	m := ahdl.NewModule("lr")
	gnd := m.AddSignal(ahdl.Ground("vss"))
	a := m.Signal("a")
	b := m.Signal("b")
	m.Instance("v1", primlib.Vdc(1), ahdl.Conns{"p": a, "n": gnd})
	m.Instance("l1", primlib.Ind(1e-6), ahdl.Conns{"p": a, "n": b})
	m.Instance("r1", primlib.Res(1e3), ahdl.Conns{"p": b, "n": gnd})
	res, err := Solve(m)
	if err != nil {
		t.Fatal(err)
	}
	checkV(t, res, "V(b)", 1)
	checkV(t, res, "I(l1)", 1e-3)
}

func Test_hierarchical_paths(t *testing.T) {
	half := ahdl.NewModule("half")
	in := half.Input("in")
	out := half.Output("out")
	hgnd := half.AddSignal(ahdl.Ground("vss"))
	half.Instance("r1", primlib.Res(1e3), ahdl.Conns{"p": in, "n": out})
	half.Instance("r2", primlib.Res(1e3), ahdl.Conns{"p": out, "n": hgnd})

	top := ahdl.NewModule("top")
	gnd := top.AddSignal(ahdl.Ground("gnd"))
	a := top.Signal("a")
	mid := top.Signal("mid")
	top.Instance("v1", primlib.Vdc(2), ahdl.Conns{"p": a, "n": gnd})
	top.Instance("x1", half, ahdl.Conns{"in": a, "out": mid})
	if err := top.Err(); err != nil {
		t.Fatal(err)
	}
	m, err := ahdl.Elaborate(top)
	if err != nil {
		t.Fatal(err)
	}

	res, err := Solve(m)
	if err != nil {
		t.Fatal(err)
	}
	// half's out port aliases the parent's mid node
	checkV(t, res, "V(mid)", 1)
	if _, ok := res["V(x1.out)"]; ok {
		t.Error("bound child ports must not get nodes of their own")
	}
}

// A submodule instantiated twice must get independent inner nodes:
// the two dividers below hang off different sources and must not be
// electrically merged.
func Test_shared_submodule(t *testing.T) {
	div := ahdl.NewModule("div")
	in := div.Input("in")
	mid := div.Signal("mid")
	dgnd := div.AddSignal(ahdl.Ground("vss"))
	div.Instance("r1", primlib.Res(1e3), ahdl.Conns{"p": in, "n": mid})
	div.Instance("r2", primlib.Res(1e3), ahdl.Conns{"p": mid, "n": dgnd})

	top := ahdl.NewModule("top")
	gnd := top.AddSignal(ahdl.Ground("gnd"))
	a := top.Signal("a")
	b := top.Signal("b")
	top.Instance("v1", primlib.Vdc(2), ahdl.Conns{"p": a, "n": gnd})
	top.Instance("v2", primlib.Vdc(4), ahdl.Conns{"p": b, "n": gnd})
	top.Instance("x1", div, ahdl.Conns{"in": a})
	top.Instance("x2", div, ahdl.Conns{"in": b})
	if err := top.Err(); err != nil {
		t.Fatal(err)
	}

	res, err := Solve(top)
	if err != nil {
		t.Fatal(err)
	}
	checkV(t, res, "V(x1.mid)", 1)
	checkV(t, res, "V(x2.mid)", 2)
	checkV(t, res, "I(v1)", -1e-3)
	checkV(t, res, "I(v2)", -2e-3)
}

func Test_ground_by_usage(t *testing.T) {
	m := ahdl.NewModule("g")
	gnd := m.AddSignal(ahdl.Ground("ref")) // name is not a ground name
	a := m.Signal("a")
	m.Instance("v1", primlib.Vdc(1), ahdl.Conns{"p": a, "n": gnd})
	m.Instance("r1", primlib.Res(1e3), ahdl.Conns{"p": a, "n": gnd})
	res, err := Solve(m)
	if err != nil {
		t.Fatal(err)
	}
	checkV(t, res, "V(a)", 1)
	if _, ok := res["V(ref)"]; ok {
		t.Error("the ground node must not be reported")
	}
}

func Test_solve_errors(t *testing.T) {
	t.Run("no ground", func(t *testing.T) {
		m := ahdl.NewModule("m")
		a := m.Signal("a")
		b := m.Signal("b")
		m.Instance("r1", primlib.Res(1e3), ahdl.Conns{"p": a, "n": b})
		if _, err := Solve(m); err == nil || !strings.Contains(err.Error(), "ground") {
			t.Errorf("expected a ground error, got %v", err)
		}
	})
	t.Run("nonlinear device", func(t *testing.T) {
		m := ahdl.NewModule("m")
		gnd := m.AddSignal(ahdl.Ground("vss"))
		a := m.Signal("a")
		m.Instance("m1", primlib.Mos("nch", 1e-6, 1e-7),
			ahdl.Conns{"d": a, "g": a, "s": gnd, "b": gnd})
		if _, err := Solve(m); err == nil {
			t.Error("expected an error for a nonlinear device")
		}
	})
	t.Run("opaque subcircuit", func(t *testing.T) {
		ext := ahdl.MustExternalModule(ahdl.ExternalModuleSpec{
			Name:  "blackbox",
			Ports: []*ahdl.Signal{ahdl.Inout("p"), ahdl.Inout("n")},
		})
		m := ahdl.NewModule("m")
		gnd := m.AddSignal(ahdl.Ground("vss"))
		a := m.Signal("a")
		m.Instance("u1", ext.MustCall(ahdl.MustRawParams(ahdl.V{"k": 1})),
			ahdl.Conns{"p": a, "n": gnd})
		if _, err := Solve(m); err == nil {
			t.Error("expected an error for an opaque device")
		}
	})
}
