package ahdl_test

import (
	"testing"

	"github.com/mixsig/ahdl"
	"github.com/pkg/errors"
)

func Test_module_build(t *testing.T) {
	m := ahdl.NewModule("amp")
	vdd := m.Input("VDD")
	out := m.Output("out")
	net := m.Signal("net1")
	if err := m.Err(); err != nil {
		t.Fatal(err)
	}
	if got := m.Ports(); len(got) != 2 || got[0] != vdd || got[1] != out {
		t.Error("ports not kept in declaration order")
	}
	if s, ok := m.SignalByName("net1"); !ok || s != net {
		t.Error("internal signal not reachable by name")
	}
	if vdd.Module() != m || net.Module() != m {
		t.Error("signals not owned by the module")
	}
}

func Test_module_autoname(t *testing.T) {
	m := ahdl.NewModule("m")
	ss := m.AddSignals(ahdl.Signals(3))
	if err := m.Err(); err != nil {
		t.Fatal(err)
	}
	for i, want := range []string{"n0", "n1", "n2"} {
		if ss[i].Name != want {
			t.Errorf("signal %d: expected name %q, got %q", i, want, ss[i].Name)
		}
	}
}

func Test_module_build_errors(t *testing.T) {
	td := []struct {
		name  string
		build func() *ahdl.Module
	}{
		{"duplicate signal name", func() *ahdl.Module {
			m := ahdl.NewModule("m")
			m.Signal("a")
			m.Signal("a")
			return m
		}},
		{"unnamed port", func() *ahdl.Module {
			m := ahdl.NewModule("m")
			m.AddPort(ahdl.Input(""))
			return m
		}},
		{"internal signal as port", func() *ahdl.Module {
			m := ahdl.NewModule("m")
			s, _ := ahdl.NewSignal("a")
			m.AddPort(s)
			return m
		}},
		{"port as internal signal", func() *ahdl.Module {
			m := ahdl.NewModule("m")
			m.AddSignal(ahdl.Input("a"))
			return m
		}},
		{"foreign signal", func() *ahdl.Module {
			other := ahdl.NewModule("other")
			s := other.Signal("a")
			m := ahdl.NewModule("m")
			m.AddSignal(s)
			return m
		}},
		{"duplicate instance name", func() *ahdl.Module {
			sub := ahdl.NewModule("sub")
			m := ahdl.NewModule("m")
			m.Instance("x", sub, nil)
			m.Instance("x", sub, nil)
			return m
		}},
		{"nil instance definition", func() *ahdl.Module {
			m := ahdl.NewModule("m")
			m.Instance("x", nil, nil)
			return m
		}},
		{"unknown port binding", func() *ahdl.Module {
			sub := ahdl.NewModule("sub")
			sub.Input("a")
			m := ahdl.NewModule("m")
			s := m.Signal("s")
			m.Instance("x", sub, ahdl.Conns{"nope": s})
			return m
		}},
		{"width mismatch binding", func() *ahdl.Module {
			sub := ahdl.NewModule("sub")
			sub.Input("a", ahdl.Width(4))
			m := ahdl.NewModule("m")
			s := m.Signal("s")
			m.Instance("x", sub, ahdl.Conns{"a": s})
			return m
		}},
		{"binding with foreign signal", func() *ahdl.Module {
			sub := ahdl.NewModule("sub")
			sub.Input("a")
			other := ahdl.NewModule("other")
			s := other.Signal("s")
			m := ahdl.NewModule("m")
			m.Instance("x", sub, ahdl.Conns{"a": s})
			return m
		}},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			m := d.build()
			err := m.Err()
			if err == nil {
				t.Fatal("expected a latched construction error")
			}
			if _, ok := errors.Cause(err).(*ahdl.ConstructionError); !ok {
				t.Errorf("expected *ConstructionError, got %T: %v", err, err)
			}
			// a latched error also fails elaboration
			if _, err := ahdl.Elaborate(m); err == nil {
				t.Error("expected Elaborate to fail on a module with a latched error")
			}
		})
	}
}

func Test_module_instance_order(t *testing.T) {
	sub := ahdl.NewModule("sub")
	m := ahdl.NewModule("m")
	names := []string{"u3", "u1", "u2"}
	for _, n := range names {
		m.Instance(n, sub, nil)
	}
	if err := m.Err(); err != nil {
		t.Fatal(err)
	}
	for i, inst := range m.Instances() {
		if inst.Name != names[i] {
			t.Fatalf("instances reordered: got %s at %d", inst.Name, i)
		}
	}
}
