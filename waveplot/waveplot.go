// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package waveplot renders simulation result columns as line plots.
package waveplot

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/mixsig/ahdl/sim"
)

// Save plots each of the ys columns of res against the x column and
// writes the image to path. The format follows the file extension
// (png, pdf, svg, ...).
//
func Save(res *sim.Results, x string, ys []string, path string) error {
	if res == nil {
		return errors.New("waveplot: nil results")
	}
	if len(ys) == 0 {
		return errors.New("waveplot: no columns to plot")
	}
	xs, ok := res.Get(x)
	if !ok {
		return errors.Errorf("waveplot: no column %s", x)
	}

	p := plot.New()
	p.X.Label.Text = x
	p.Add(plotter.NewGrid())

	var lines []interface{}
	for _, y := range ys {
		col, ok := res.Get(y)
		if !ok {
			return errors.Errorf("waveplot: no column %s", y)
		}
		if len(col) != len(xs) {
			return errors.Errorf("waveplot: column %s has %d points, %s has %d", y, len(col), x, len(xs))
		}
		xys := make(plotter.XYs, len(xs))
		for i := range xs {
			xys[i].X = xs[i]
			xys[i].Y = col[i]
		}
		lines = append(lines, y, xys)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return errors.Wrap(err, "waveplot")
	}
	return errors.Wrap(p.Save(8*vg.Inch, 5*vg.Inch, path), "waveplot")
}
