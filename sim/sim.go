// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package sim runs elaborated testbenches on an external circuit
// simulator. The testbench module must expose exactly one port, the
// ground reference; the deck instantiates it with that port tied to
// node 0. Supported backend: ngspice in batch mode, with results read
// back from an ASCII rawfile.
package sim

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mixsig/ahdl"
	"github.com/mixsig/ahdl/internal/sunit"
	"github.com/mixsig/ahdl/netlist"
)

// A Simulator identifies a supported external simulator.
//
type Simulator string

// Supported simulators.
//
const (
	Ngspice Simulator = "ngspice"
)

// Options configures a simulation run.
//
type Options struct {
	// Simulator backend. Defaults to Ngspice.
	Simulator Simulator
	// RunDir receives the deck, log and rawfile. A temporary
	// directory is created (and removed afterwards) when empty.
	RunDir string
	// KeepFiles prevents removal of a temporary run directory.
	KeepFiles bool
}

// A Card is one analysis or control line of the deck.
//
type Card interface {
	// Card returns the deck line, without the trailing newline.
	Card() string
}

// Op requests a DC operating-point analysis.
//
type Op struct{}

// Dc requests a DC sweep of the named source.
//
type Dc struct {
	Source      string
	Start, Stop float64
	Step        float64
}

// Ac requests a small-signal sweep. Variation is dec, oct or lin;
// Points is per-decade/octave or total, per SPICE convention.
//
type Ac struct {
	Variation    string
	Points       int
	FStart, FStop float64
}

// Tran requests a transient analysis.
//
type Tran struct {
	Step, Stop float64
}

// Include pulls an external file (model libraries, subcircuit
// definitions) into the deck.
//
type Include struct {
	Path string
}

func (Op) Card() string { return ".op" }

func (d Dc) Card() string {
	return fmt.Sprintf(".dc %s %s %s %s", d.Source,
		sunit.Format(d.Start), sunit.Format(d.Stop), sunit.Format(d.Step))
}

func (a Ac) Card() string {
	return fmt.Sprintf(".ac %s %d %s %s", a.Variation, a.Points,
		sunit.Format(a.FStart), sunit.Format(a.FStop))
}

func (t Tran) Card() string {
	return fmt.Sprintf(".tran %s %s", sunit.Format(t.Step), sunit.Format(t.Stop))
}

func (i Include) Card() string { return fmt.Sprintf(".include %q", i.Path) }

// A Sim pairs an elaborated testbench with the analyses to run on it.
//
type Sim struct {
	Name  string
	Tb    *ahdl.Module
	Cards []Card
}

// WriteDeck writes the complete deck for s: netlist, testbench
// instantiation, analysis cards and control lines.
//
func (s *Sim) WriteDeck(w io.Writer) error {
	if s.Tb == nil {
		return errors.New("sim: nil testbench")
	}
	ports := s.Tb.Ports()
	if len(ports) != 1 {
		return errors.Errorf("sim: testbench %s must have exactly one port (the ground reference), has %d",
			s.Tb.Name(), len(ports))
	}
	bw := bufio.NewWriter(w)
	// the netlist's comment header doubles as the title line, which
	// simulators swallow; nothing meaningful may precede it
	if err := netlist.Export(bw, s.Tb); err != nil {
		return err
	}
	for _, c := range s.Cards {
		if inc, ok := c.(Include); ok {
			fmt.Fprintln(bw, inc.Card())
		}
	}
	fmt.Fprintf(bw, "\nxtop 0 %s\n", deckName(s.Tb))
	for _, c := range s.Cards {
		if _, ok := c.(Include); ok {
			continue
		}
		fmt.Fprintln(bw, c.Card())
	}
	fmt.Fprintln(bw, ".options filetype=ascii")
	fmt.Fprintln(bw, ".end")
	return errors.Wrap(bw.Flush(), "sim")
}

// deckName mirrors the exporter's definition naming for the top
// module, so the xtop card matches its .subckt line.
//
func deckName(m *ahdl.Module) string {
	name := m.Name()
	if name == "" {
		name = "anon"
	}
	if p, ok := m.GenParams(); ok {
		name += "_" + p.Fingerprint()
	}
	return name
}

// Available reports whether the simulator binary is on PATH.
//
func Available(s Simulator) bool {
	if s == "" {
		s = Ngspice
	}
	_, err := exec.LookPath(string(s))
	return err == nil
}

// Run writes the deck, invokes the simulator in batch mode and parses
// the resulting rawfile.
//
func (s *Sim) Run(ctx context.Context, opts Options) (*Results, error) {
	if opts.Simulator == "" {
		opts.Simulator = Ngspice
	}
	if opts.Simulator != Ngspice {
		return nil, errors.Errorf("sim: unsupported simulator %s", opts.Simulator)
	}
	name := s.Name
	if name == "" {
		name = "sim"
	}

	dir := opts.RunDir
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "ahdl-sim-")
		if err != nil {
			return nil, errors.Wrap(err, "sim")
		}
		if !opts.KeepFiles {
			defer os.RemoveAll(dir)
		}
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "sim")
	}

	deck := filepath.Join(dir, name+".sp")
	raw := filepath.Join(dir, name+".raw")
	logf := filepath.Join(dir, name+".log")

	df, err := os.Create(deck)
	if err != nil {
		return nil, errors.Wrap(err, "sim")
	}
	if err := s.WriteDeck(df); err != nil {
		df.Close()
		return nil, err
	}
	if err := df.Close(); err != nil {
		return nil, errors.Wrap(err, "sim")
	}

	cmd := exec.CommandContext(ctx, string(Ngspice), "-b", "-r", raw, "-o", logf, deck)
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "sim: ngspice failed, see %s", logf)
	}

	rf, err := os.Open(raw)
	if err != nil {
		return nil, errors.Wrap(err, "sim: no rawfile produced")
	}
	defer rf.Close()
	return ParseRaw(rf)
}
