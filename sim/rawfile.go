// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package sim

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Results holds simulation output as named columns, one value per
// sweep point. Complex columns are split into "<name>_MAG" and
// "<name>_PHASE" (degrees) pairs. A run with several analyses yields
// several plots in one rawfile; their columns are merged, with later
// plots overriding same-named columns.
//
type Results struct {
	names []string
	cols  map[string][]float64
}

// Columns returns the column names in rawfile order.
//
func (r *Results) Columns() []string {
	return append([]string(nil), r.names...)
}

// Get returns the named column.
//
func (r *Results) Get(name string) ([]float64, bool) {
	c, ok := r.cols[name]
	return c, ok
}

// Len returns the number of sweep points.
//
func (r *Results) Len() int {
	if len(r.names) == 0 {
		return 0
	}
	return len(r.cols[r.names[0]])
}

func (r *Results) add(name string, col []float64) {
	if _, ok := r.cols[name]; !ok {
		r.names = append(r.names, name)
	}
	r.cols[name] = col
}

// ParseRaw reads an ASCII rawfile: one plot per analysis, each with
// header fields, a Variables block and a Values block holding one
// index-prefixed tuple per point.
//
func ParseRaw(rd io.Reader) (*Results, error) {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	res := &Results{cols: make(map[string][]float64)}
	plots := 0
	var (
		nvars, npoints int
		isComplex      bool
		varNames       []string
	)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "Flags:"):
			isComplex = strings.Contains(line, "complex")
		case strings.HasPrefix(line, "No. Variables:"):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "No. Variables:")))
			if err != nil {
				return nil, errors.Wrap(err, "rawfile: variable count")
			}
			nvars = n
		case strings.HasPrefix(line, "Variables:"):
			varNames = varNames[:0]
			for i := 0; i < nvars && sc.Scan(); i++ {
				f := strings.Fields(sc.Text())
				if len(f) < 2 {
					return nil, errors.Errorf("rawfile: malformed variable line %q", sc.Text())
				}
				varNames = append(varNames, f[1])
			}
		case strings.HasPrefix(line, "No. Points:"):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "No. Points:")))
			if err != nil {
				return nil, errors.Wrap(err, "rawfile: point count")
			}
			npoints = n
		case strings.HasPrefix(line, "Values:"):
			if len(varNames) != nvars {
				return nil, errors.Errorf("rawfile: %d variables declared, %d listed", nvars, len(varNames))
			}
			if err := parseValues(sc, res, varNames, npoints, isComplex); err != nil {
				return nil, err
			}
			plots++
			nvars, npoints, isComplex, varNames = 0, 0, false, nil
		case strings.HasPrefix(line, "Binary:"):
			return nil, errors.New("rawfile: binary format; run with filetype=ascii")
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "rawfile")
	}
	if plots == 0 {
		return nil, errors.New("rawfile: no Values block")
	}
	return res, nil
}

// parseValues reads exactly one plot's worth of value tokens, leaving
// the scanner at the next plot's header.
//
func parseValues(sc *bufio.Scanner, res *Results, varNames []string, npoints int, isComplex bool) error {
	want := npoints * (len(varNames) + 1) // each point leads with its index
	toks := make([]string, 0, want)
	for len(toks) < want && sc.Scan() {
		toks = append(toks, strings.Fields(sc.Text())...)
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "rawfile")
	}
	if len(toks) != want {
		return errors.Errorf("rawfile: expected %d value tokens, got %d", want, len(toks))
	}

	re := make([][]float64, len(varNames))
	im := make([][]float64, len(varNames))
	for i := range varNames {
		re[i] = make([]float64, 0, npoints)
		im[i] = make([]float64, 0, npoints)
	}
	for p := 0; p < npoints; p++ {
		base := p * (len(varNames) + 1)
		for v := range varNames {
			tok := toks[base+1+v]
			r, i, err := parseValue(tok, isComplex)
			if err != nil {
				return errors.Wrapf(err, "rawfile: point %d, variable %s", p, varNames[v])
			}
			re[v] = append(re[v], r)
			im[v] = append(im[v], i)
		}
	}

	for v, name := range varNames {
		if !isComplex {
			res.add(name, re[v])
			continue
		}
		mag := make([]float64, npoints)
		phase := make([]float64, npoints)
		for p := 0; p < npoints; p++ {
			mag[p] = math.Hypot(re[v][p], im[v][p])
			phase[p] = math.Atan2(im[v][p], re[v][p]) * 180 / math.Pi
		}
		res.add(name+"_MAG", mag)
		res.add(name+"_PHASE", phase)
	}
	return nil
}

func parseValue(tok string, isComplex bool) (float64, float64, error) {
	if isComplex {
		parts := strings.SplitN(tok, ",", 2)
		if len(parts) != 2 {
			return 0, 0, errors.Errorf("malformed complex value %q", tok)
		}
		r, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, 0, errors.Errorf("malformed complex value %q", tok)
		}
		i, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, 0, errors.Errorf("malformed complex value %q", tok)
		}
		return r, i, nil
	}
	r, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, 0, errors.Errorf("malformed value %q", tok)
	}
	return r, 0, nil
}
