/*
Copyright © 2020 the EnPrep authors.
This file is part of EnPrep.

EnPrep is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EnPrep is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EnPrep.  If not, see <http://www.gnu.org/licenses/>.
*/

package enprep

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// InputPlotter draws timeseries as PNG figures in Dir.
type InputPlotter struct {
	Dir string
}

// PlotTimeseries implements Plotter.
func (ip InputPlotter) PlotTimeseries(index []time.Time, values Series, label, header string) (string, error) {
	if len(index) != len(values) {
		return "", fmt.Errorf("enprep: plotting %s: %d times but %d values", label, len(index), len(values))
	}
	p, err := plot.New()
	if err != nil {
		return "", err
	}
	p.Title.Text = label
	p.X.Label.Text = "Time"
	p.Y.Label.Text = header
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i].X = float64(index[i].Unix())
		xys[i].Y = v
	}
	l, err := plotter.NewLine(xys)
	if err != nil {
		return "", err
	}
	p.Add(l)

	if err := os.MkdirAll(ip.Dir, os.ModePerm); err != nil {
		return "", err
	}
	path := filepath.Join(ip.Dir, "input_timeseries_"+label+"_"+header+".png")
	if err := p.Save(16*vg.Centimeter, 5*vg.Centimeter, path); err != nil {
		return "", fmt.Errorf("enprep: saving plot: %v", err)
	}
	return path, nil
}
