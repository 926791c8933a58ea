// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Command opamp builds a two-stage operational amplifier from a
// parameterized generator, prints its netlist, and optionally runs a
// DC operating-point simulation with ngspice.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/mixsig/ahdl"
	"github.com/mixsig/ahdl/netlist"
	"github.com/mixsig/ahdl/primlib"
	"github.com/mixsig/ahdl/sim"
	"github.com/mixsig/ahdl/waveplot"
)

// OpAmpParams sizes the amplifier: transistor multipliers per device,
// supply, load, compensation and bias values.
//
var OpAmpParams = ahdl.MustParamClass("OpAmpParams",
	ahdl.Param{Name: "wp1", Kind: ahdl.KindInt, Default: ahdl.IntV(10), Desc: "multiplier of pmos mp1"},
	ahdl.Param{Name: "wp2", Kind: ahdl.KindInt, Default: ahdl.IntV(10), Desc: "multiplier of pmos mp2"},
	ahdl.Param{Name: "wp3", Kind: ahdl.KindInt, Default: ahdl.IntV(4), Desc: "multiplier of pmos mp3"},
	ahdl.Param{Name: "wn1", Kind: ahdl.KindInt, Default: ahdl.IntV(38), Desc: "multiplier of nmos mn1"},
	ahdl.Param{Name: "wn2", Kind: ahdl.KindInt, Default: ahdl.IntV(38), Desc: "multiplier of nmos mn2"},
	ahdl.Param{Name: "wn3", Kind: ahdl.KindInt, Default: ahdl.IntV(9), Desc: "multiplier of nmos mn3"},
	ahdl.Param{Name: "wn4", Kind: ahdl.KindInt, Default: ahdl.IntV(20), Desc: "multiplier of nmos mn4"},
	ahdl.Param{Name: "wn5", Kind: ahdl.KindInt, Default: ahdl.IntV(60), Desc: "multiplier of nmos mn5"},
	ahdl.Param{Name: "vdd", Kind: ahdl.KindFloat, Default: ahdl.FloatV(1.2), Desc: "supply voltage"},
	ahdl.Param{Name: "cl", Kind: ahdl.KindFloat, Default: ahdl.FloatV(1e-11), Desc: "load capacitance"},
	ahdl.Param{Name: "cc", Kind: ahdl.KindFloat, Default: ahdl.FloatV(3e-12), Desc: "Miller capacitance"},
	ahdl.Param{Name: "ibias", Kind: ahdl.KindFloat, Default: ahdl.FloatV(3e-5), Desc: "bias current"},
)

func nmos(m int64) *ahdl.ExternalModuleCall {
	return primlib.Mosfet.MustCall(primlib.MosParams.MustNew(ahdl.V{"model": "nmos", "m": m}))
}

func pmos(m int64) *ahdl.ExternalModuleCall {
	return primlib.Mosfet.MustCall(primlib.MosParams.MustNew(ahdl.V{"model": "pmos", "m": m}))
}

// OpAmp generates the two-stage amplifier: a differential input stage
// with a pmos mirror load, an inverting output stage, a mirrored bias
// branch and Miller compensation.
//
var OpAmp = ahdl.MustGenerator("opamp", OpAmpParams, func(p ahdl.Params) (*ahdl.Module, error) {
	m := ahdl.NewModule("")
	vdd := m.Input("vdd")
	vss := m.Input("vss")
	inp := m.Input("inp")
	inn := m.Input("inn")
	out := m.Output("out")
	net3 := m.Signal("net3")
	net4 := m.Signal("net4")
	net5 := m.Signal("net5")
	net7 := m.Signal("net7")

	// input stage
	m.Instance("mp1", pmos(p.Int("wp1")), ahdl.Conns{"d": net4, "g": net4, "s": vdd, "b": vdd})
	m.Instance("mp2", pmos(p.Int("wp2")), ahdl.Conns{"d": net5, "g": net4, "s": vdd, "b": vdd})
	m.Instance("mn1", nmos(p.Int("wn1")), ahdl.Conns{"d": net4, "g": inn, "s": net3, "b": net3})
	m.Instance("mn2", nmos(p.Int("wn2")), ahdl.Conns{"d": net5, "g": inp, "s": net3, "b": net3})
	m.Instance("mn3", nmos(p.Int("wn3")), ahdl.Conns{"d": net3, "g": net7, "s": vss, "b": vss})

	// output stage
	m.Instance("mp3", pmos(p.Int("wp3")), ahdl.Conns{"d": out, "g": net5, "s": vdd, "b": vdd})
	m.Instance("mn5", nmos(p.Int("wn5")), ahdl.Conns{"d": out, "g": net7, "s": vss, "b": vss})
	m.Instance("cl", primlib.Cap(p.Float("cl")), ahdl.Conns{"p": out, "n": vss})

	// bias mirror
	m.Instance("mn4", nmos(p.Int("wn4")), ahdl.Conns{"d": net7, "g": net7, "s": vss, "b": vss})
	m.Instance("ibias", primlib.Isrc(p.Float("ibias")), ahdl.Conns{"p": vdd, "n": net7})

	// compensation
	m.Instance("cc", primlib.Cap(p.Float("cc")), ahdl.Conns{"p": net5, "n": out})
	return m, m.Err()
})

// testbench wraps the amplifier for simulation: supply and input bias
// sources, with the sole port vss as the ground reference.
//
func testbench(params ahdl.Params) (*ahdl.Module, error) {
	tb := ahdl.NewModule("tb")
	vss := tb.Inout("vss")
	vdd := tb.Signal("vdd")
	inp := tb.Signal("inp")
	inn := tb.Signal("inn")
	out := tb.Signal("out")

	supply := primlib.VdcSrc.MustCall(primlib.VdcParams.MustNew(ahdl.V{
		"dc": params.Float("vdd"), "ac": 1.0,
	}))
	tb.Instance("vsupply", supply, ahdl.Conns{"p": vdd, "n": vss})
	tb.Instance("vinp", primlib.Vdc(0.65), ahdl.Conns{"p": inp, "n": vss})
	tb.Instance("vinn", primlib.Vdc(0.55), ahdl.Conns{"p": inn, "n": vss})
	tb.Instance("dut", OpAmp.MustBind(params), ahdl.Conns{
		"vdd": vdd, "vss": vss, "inp": inp, "inn": inn, "out": out,
	})
	if err := tb.Err(); err != nil {
		return nil, err
	}
	return ahdl.Elaborate(tb)
}

func printResults(res *sim.Results) {
	cols := res.Columns()
	sort.Strings(cols)
	fmt.Println("\nSimulation Results:")
	for _, name := range cols {
		col, _ := res.Get(name)
		if len(col) == 1 {
			fmt.Printf("  %-16s %g\n", name, col[0])
		} else {
			fmt.Printf("  %-16s %d points\n", name, len(col))
		}
	}
}

func main() {
	simulate := flag.Bool("sim", false, "run a DC operating-point simulation with ngspice")
	rundir := flag.String("rundir", "", "simulation working directory (temporary if empty)")
	models := flag.String("models", "", "model library file to include in the deck")
	plotPath := flag.String("plot", "", "write an AC gain plot to this file (implies -sim)")
	flag.Parse()

	params := OpAmpParams.MustNew(nil)
	top, err := ahdl.Elaborate(OpAmp, ahdl.WithParams(params))
	if err != nil {
		log.Fatalf("Error elaborating amplifier: %v", err)
	}
	if err := netlist.Export(os.Stdout, top); err != nil {
		log.Fatalf("Error writing netlist: %v", err)
	}

	if !*simulate && *plotPath == "" {
		return
	}
	if !sim.Available(sim.Ngspice) {
		log.Println("ngspice is not available, skipping simulation")
		return
	}

	tb, err := testbench(params)
	if err != nil {
		log.Fatalf("Error building testbench: %v", err)
	}
	cards := []sim.Card{sim.Op{}}
	if *models != "" {
		cards = append(cards, sim.Include{Path: *models})
	}
	if *plotPath != "" {
		cards = append(cards, sim.Ac{Variation: "dec", Points: 10, FStart: 1, FStop: 1e9})
	}
	s := &sim.Sim{Name: "opamp", Tb: tb, Cards: cards}
	res, err := s.Run(context.Background(), sim.Options{
		Simulator: sim.Ngspice,
		RunDir:    *rundir,
		KeepFiles: *rundir != "",
	})
	if err != nil {
		log.Fatalf("Error running simulation: %v", err)
	}
	printResults(res)

	if *plotPath != "" {
		if err := waveplot.Save(res, "frequency_MAG", []string{"v(out)_MAG"}, *plotPath); err != nil {
			log.Fatalf("Error writing plot: %v", err)
		}
		log.Printf("Wrote %s", *plotPath)
	}
}
