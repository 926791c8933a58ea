// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package sim

import (
	"math"
	"strings"
	"testing"

	"github.com/mixsig/ahdl"
	"github.com/mixsig/ahdl/primlib"
)

func testbench(t *testing.T) *ahdl.Module {
	t.Helper()
	tb := ahdl.NewModule("tb")
	gnd := tb.Inout("vss")
	a := tb.Signal("a")
	tb.Instance("v1", primlib.Vdc(2), ahdl.Conns{"p": a, "n": gnd})
	tb.Instance("r1", primlib.Res(1e3), ahdl.Conns{"p": a, "n": gnd})
	m, err := ahdl.Elaborate(tb)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func Test_cards(t *testing.T) {
	td := []struct {
		card Card
		want string
	}{
		{Op{}, ".op"},
		{Dc{Source: "v1", Start: 0, Stop: 1.2, Step: 0.01}, ".dc v1 0 1.2 10m"},
		{Ac{Variation: "dec", Points: 10, FStart: 1, FStop: 1e8}, ".ac dec 10 1 100meg"},
		{Tran{Step: 1e-9, Stop: 1e-6}, ".tran 1n 1u"},
		{Include{Path: "models.lib"}, `.include "models.lib"`},
	}
	for _, d := range td {
		if got := d.card.Card(); got != d.want {
			t.Errorf("got %q, want %q", got, d.want)
		}
	}
}

func Test_write_deck(t *testing.T) {
	s := &Sim{
		Name:  "op",
		Tb:    testbench(t),
		Cards: []Card{Include{Path: "models.lib"}, Op{}},
	}
	var b strings.Builder
	if err := s.WriteDeck(&b); err != nil {
		t.Fatal(err)
	}
	got := b.String()

	for _, want := range []string{
		`.include "models.lib"`,
		".subckt tb vss\n",
		"vv1 a vss dc 2\n",
		"rr1 a vss 1k\n",
		"xtop 0 tb\n",
		".op\n",
		".options filetype=ascii\n",
		".end\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in deck:\n%s", want, got)
		}
	}
	if !strings.HasPrefix(got, "* tb\n") {
		t.Error("the deck must open with the title comment; simulators swallow the first line")
	}
	if strings.Index(got, ".include") < strings.Index(got, ".ends") {
		t.Error("includes must follow the netlist, never the title slot")
	}
	if strings.Index(got, ".include") > strings.Index(got, "xtop") {
		t.Error("includes must precede the testbench instantiation")
	}
	if strings.Index(got, "xtop") > strings.Index(got, ".op") {
		t.Error("testbench instantiation must precede analysis cards")
	}
}

func Test_write_deck_port_check(t *testing.T) {
	tb := ahdl.NewModule("tb")
	tb.Inout("vss")
	tb.Inout("vdd")
	s := &Sim{Tb: tb}
	var b strings.Builder
	if err := s.WriteDeck(&b); err == nil {
		t.Error("a testbench with two ports must be rejected")
	}
	s = &Sim{Tb: ahdl.NewModule("bare")}
	if err := s.WriteDeck(&b); err == nil {
		t.Error("a testbench without ports must be rejected")
	}
}

const realRaw = `Title: op
Date: today
Plotname: Operating Point
Flags: real
No. Variables: 2
No. Points: 1
Variables:
	0	v(a)	voltage
	1	i(v1)	current
Values:
0	2.0
	-1.0e-3
`

const complexRaw = `Title: ac
Date: today
Plotname: AC Analysis
Flags: complex
No. Variables: 2
No. Points: 2
Variables:
	0	frequency	frequency
	1	v(out)	voltage
Values:
0	1.0,0.0
	0.0,1.0
1	10.0,0.0
	-1.0,0.0
`

func Test_parse_raw_real(t *testing.T) {
	res, err := ParseRaw(strings.NewReader(realRaw))
	if err != nil {
		t.Fatal(err)
	}
	if res.Len() != 1 {
		t.Fatalf("expected 1 point, got %d", res.Len())
	}
	if got := res.Columns(); len(got) != 2 || got[0] != "v(a)" || got[1] != "i(v1)" {
		t.Fatalf("unexpected columns %v", got)
	}
	va, _ := res.Get("v(a)")
	if va[0] != 2.0 {
		t.Errorf("v(a) = %g, want 2", va[0])
	}
	iv, _ := res.Get("i(v1)")
	if iv[0] != -1e-3 {
		t.Errorf("i(v1) = %g, want -1e-3", iv[0])
	}
}

func Test_parse_raw_complex(t *testing.T) {
	res, err := ParseRaw(strings.NewReader(complexRaw))
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Columns(); len(got) != 4 {
		t.Fatalf("expected 4 columns (mag/phase pairs), got %v", got)
	}
	mag, ok := res.Get("v(out)_MAG")
	if !ok {
		t.Fatal("missing v(out)_MAG")
	}
	phase, _ := res.Get("v(out)_PHASE")
	if math.Abs(mag[0]-1) > 1e-12 || math.Abs(phase[0]-90) > 1e-9 {
		t.Errorf("point 0: mag %g phase %g, want 1 and 90", mag[0], phase[0])
	}
	if math.Abs(mag[1]-1) > 1e-12 || math.Abs(phase[1]-180) > 1e-9 {
		t.Errorf("point 1: mag %g phase %g, want 1 and 180", mag[1], phase[1])
	}
	f, _ := res.Get("frequency_MAG")
	if f[1] != 10 {
		t.Errorf("frequency point 1 = %g, want 10", f[1])
	}
}

// ngspice writes every analysis of a run into one rawfile; a deck
// with both .op and .ac yields a real plot followed by a complex one.
func Test_parse_raw_multi_plot(t *testing.T) {
	res, err := ParseRaw(strings.NewReader(realRaw + complexRaw))
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Columns(); len(got) != 6 {
		t.Fatalf("expected 6 merged columns, got %v", got)
	}
	va, ok := res.Get("v(a)")
	if !ok || va[0] != 2.0 {
		t.Errorf("operating-point column lost in merge: %v %v", va, ok)
	}
	mag, ok := res.Get("v(out)_MAG")
	if !ok || len(mag) != 2 {
		t.Errorf("AC column lost in merge: %v %v", mag, ok)
	}
}

func Test_parse_raw_errors(t *testing.T) {
	if _, err := ParseRaw(strings.NewReader("Title: x\n")); err == nil {
		t.Error("expected an error for a rawfile without values")
	}
	truncated := strings.Replace(realRaw, "\t-1.0e-3\n", "", 1)
	if _, err := ParseRaw(strings.NewReader(truncated)); err == nil {
		t.Error("expected an error for a truncated Values block")
	}
	binary := strings.Replace(realRaw, "Values:", "Binary:", 1)
	if _, err := ParseRaw(strings.NewReader(binary)); err == nil {
		t.Error("expected an error for a binary rawfile")
	}
}
