// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package primlib provides the stock leaf devices of circuit design:
// resistors, capacitors, inductors, diodes, MOS transistors and ideal
// sources. Each device is an ahdl.ExternalModule with a declared
// parameter class, plus a convenience caller for the common case.
//
// Two-terminal devices use ports p and n. MOS transistors use the
// d, g, s, b port order of their exported element cards.
package primlib

import (
	"github.com/mixsig/ahdl"
)

func twoPin() []*ahdl.Signal {
	return []*ahdl.Signal{ahdl.Inout("p"), ahdl.Inout("n")}
}

// ResParams parameterizes Resistor.
//
var ResParams = ahdl.MustParamClass("ResParams",
	ahdl.Param{Name: "r", Kind: ahdl.KindFloat, Desc: "resistance (ohms)"},
)

// Resistor is the ideal two-terminal resistor.
//
var Resistor = ahdl.MustExternalModule(ahdl.ExternalModuleSpec{
	Name:      "res",
	Ports:     twoPin(),
	Params:    ResParams,
	Desc:      "ideal resistor",
	SpiceType: ahdl.Res,
})

// Res returns a Resistor call with the given resistance.
//
func Res(r float64) *ahdl.ExternalModuleCall {
	return Resistor.MustCall(ResParams.MustNew(ahdl.V{"r": r}))
}

// CapParams parameterizes Capacitor.
//
var CapParams = ahdl.MustParamClass("CapParams",
	ahdl.Param{Name: "c", Kind: ahdl.KindFloat, Desc: "capacitance (farads)"},
)

// Capacitor is the ideal two-terminal capacitor.
//
var Capacitor = ahdl.MustExternalModule(ahdl.ExternalModuleSpec{
	Name:      "cap",
	Ports:     twoPin(),
	Params:    CapParams,
	Desc:      "ideal capacitor",
	SpiceType: ahdl.Cap,
})

// Cap returns a Capacitor call with the given capacitance.
//
func Cap(c float64) *ahdl.ExternalModuleCall {
	return Capacitor.MustCall(CapParams.MustNew(ahdl.V{"c": c}))
}

// IndParams parameterizes Inductor.
//
var IndParams = ahdl.MustParamClass("IndParams",
	ahdl.Param{Name: "l", Kind: ahdl.KindFloat, Desc: "inductance (henries)"},
)

// Inductor is the ideal two-terminal inductor.
//
var Inductor = ahdl.MustExternalModule(ahdl.ExternalModuleSpec{
	Name:      "ind",
	Ports:     twoPin(),
	Params:    IndParams,
	Desc:      "ideal inductor",
	SpiceType: ahdl.Ind,
})

// Ind returns an Inductor call with the given inductance.
//
func Ind(l float64) *ahdl.ExternalModuleCall {
	return Inductor.MustCall(IndParams.MustNew(ahdl.V{"l": l}))
}

// DiodeParams parameterizes DiodeDev.
//
var DiodeParams = ahdl.MustParamClass("DiodeParams",
	ahdl.Param{Name: "model", Kind: ahdl.KindString, Desc: "model name"},
	ahdl.Param{Name: "area", Kind: ahdl.KindFloat, Default: ahdl.FloatV(1), Desc: "area multiplier"},
)

// DiodeDev is the junction diode, anode p to cathode n.
//
var DiodeDev = ahdl.MustExternalModule(ahdl.ExternalModuleSpec{
	Name:      "diode",
	Ports:     twoPin(),
	Params:    DiodeParams,
	Desc:      "junction diode",
	SpiceType: ahdl.Diode,
})

// Diode returns a DiodeDev call with the given model name.
//
func Diode(model string) *ahdl.ExternalModuleCall {
	return DiodeDev.MustCall(DiodeParams.MustNew(ahdl.V{"model": model}))
}

// MosParams parameterizes Mosfet. The model field selects the device
// model by name; nmos or pmos polarity is a property of that model.
//
var MosParams = ahdl.MustParamClass("MosParams",
	ahdl.Param{Name: "model", Kind: ahdl.KindString, Desc: "model name"},
	ahdl.Param{Name: "w", Kind: ahdl.KindFloat, Default: ahdl.FloatV(1e-6), Desc: "width (m)"},
	ahdl.Param{Name: "l", Kind: ahdl.KindFloat, Default: ahdl.FloatV(1e-6), Desc: "length (m)"},
	ahdl.Param{Name: "nf", Kind: ahdl.KindInt, Default: ahdl.IntV(1), Desc: "number of fingers"},
	ahdl.Param{Name: "m", Kind: ahdl.KindInt, Default: ahdl.IntV(1), Desc: "multiplier"},
)

// Mosfet is the four-terminal MOS transistor: drain, gate, source,
// bulk, in element-card order.
//
var Mosfet = ahdl.MustExternalModule(ahdl.ExternalModuleSpec{
	Name: "mos",
	Ports: []*ahdl.Signal{
		ahdl.Inout("d"), ahdl.Inout("g"), ahdl.Inout("s"), ahdl.Inout("b"),
	},
	Params:    MosParams,
	Desc:      "MOS transistor",
	SpiceType: ahdl.Mos,
})

// Mos returns a Mosfet call with the given model, width and length.
//
func Mos(model string, w, l float64) *ahdl.ExternalModuleCall {
	return Mosfet.MustCall(MosParams.MustNew(ahdl.V{"model": model, "w": w, "l": l}))
}

// VdcParams parameterizes VdcSrc: a DC level plus an AC magnitude for
// small-signal analyses.
//
var VdcParams = ahdl.MustParamClass("VdcParams",
	ahdl.Param{Name: "dc", Kind: ahdl.KindFloat, Desc: "DC value (volts)"},
	ahdl.Param{Name: "ac", Kind: ahdl.KindFloat, Default: ahdl.FloatV(0), Desc: "AC magnitude (volts)"},
)

// VdcSrc is the ideal voltage source, positive terminal p.
//
var VdcSrc = ahdl.MustExternalModule(ahdl.ExternalModuleSpec{
	Name:      "vdc",
	Ports:     twoPin(),
	Params:    VdcParams,
	Desc:      "ideal voltage source",
	SpiceType: ahdl.Vsource,
})

// Vdc returns a VdcSrc call with the given DC level.
//
func Vdc(dc float64) *ahdl.ExternalModuleCall {
	return VdcSrc.MustCall(VdcParams.MustNew(ahdl.V{"dc": dc}))
}

// IsrcParams parameterizes IsrcDev.
//
var IsrcParams = ahdl.MustParamClass("IsrcParams",
	ahdl.Param{Name: "dc", Kind: ahdl.KindFloat, Desc: "DC value (amps)"},
	ahdl.Param{Name: "ac", Kind: ahdl.KindFloat, Default: ahdl.FloatV(0), Desc: "AC magnitude (amps)"},
)

// IsrcDev is the ideal current source; current flows from p to n
// through the source.
//
var IsrcDev = ahdl.MustExternalModule(ahdl.ExternalModuleSpec{
	Name:      "isrc",
	Ports:     twoPin(),
	Params:    IsrcParams,
	Desc:      "ideal current source",
	SpiceType: ahdl.Isource,
})

// Isrc returns an IsrcDev call with the given DC current.
//
func Isrc(dc float64) *ahdl.ExternalModuleCall {
	return IsrcDev.MustCall(IsrcParams.MustNew(ahdl.V{"dc": dc}))
}
