/*
Package ahdl provides an embedded hardware description library for
analog and mixed-signal circuit design.

Circuits are declared as in-memory graphs of Modules: named circuit
definitions holding ports, internal signals and instances of other
modules. Parameterized circuits are declared as Generators, deferred
factory functions which are resolved into concrete Modules by
Elaborate. Technology primitives defined outside the library (foundry
transistors, existing SPICE subcircuits) are wrapped as
ExternalModules.

A fully elaborated hierarchy can be serialized to a SPICE netlist by
the netlist package and simulated through the sim package.

*/
package ahdl
