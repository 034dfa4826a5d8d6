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
	"context"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
)

type countingArchiver map[string]int

func (a countingArchiver) Archive(_ context.Context, path string) error {
	a[filepath.Base(path)]++
	return nil
}

type recordingPlotter []string

func (r *recordingPlotter) PlotTimeseries(index []time.Time, values Series, label, header string) (string, error) {
	if len(index) != len(values) {
		return "", fmt.Errorf("%d times but %d values", len(index), len(values))
	}
	path := label + "_" + header + ".png"
	*r = append(*r, path)
	return path, nil
}

func TestReadColumn(t *testing.T) {
	ing, hook, cleanup := newTestIngestor(t)
	defer cleanup()
	p := testProject(t, 1)
	writeTimeseries(t, ing, "exact.csv", []string{"a", "b"}, ramp(24), ramp(24).Scaled(2))
	writeTimeseries(t, ing, "long.csv", []string{"a"}, ramp(30))
	writeTimeseries(t, ing, "short.csv", []string{"a"}, ramp(20))

	t.Run("exact", func(t *testing.T) {
		s, header, err := ing.ReadColumn(&p.Settings, "asset", "exact.csv", "b")
		if err != nil {
			t.Fatal(err)
		}
		if header != "b" {
			t.Errorf("header %q", header)
		}
		if !reflect.DeepEqual(s, ramp(24).Scaled(2)) {
			t.Errorf("have %v", s)
		}
	})
	t.Run("first column", func(t *testing.T) {
		s, header, err := ing.ReadColumn(&p.Settings, "asset", "exact.csv", "")
		if err != nil {
			t.Fatal(err)
		}
		if header != "a" {
			t.Errorf("header %q", header)
		}
		if !reflect.DeepEqual(s, ramp(24)) {
			t.Errorf("have %v", s)
		}
	})
	t.Run("longer", func(t *testing.T) {
		hook.Reset()
		s, _, err := ing.ReadColumn(&p.Settings, "asset", "long.csv", "a")
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(s, ramp(24)) {
			t.Errorf("have %v", s)
		}
		if n := countEntries(hook, logrus.InfoLevel, "Excess data dropped"); n != 1 {
			t.Errorf("have %d truncation messages", n)
		}
	})
	t.Run("shorter", func(t *testing.T) {
		hook.Reset()
		_, _, err := ing.ReadColumn(&p.Settings, "asset", "short.csv", "a")
		e, ok := err.(*TimeseriesTooShortError)
		if !ok {
			t.Fatalf("have error %v", err)
		}
		if e.Rows != 20 || e.Periods != 24 {
			t.Errorf("have %+v", e)
		}
		if !IsFatal(fmt.Errorf("wrapped: %w", err)) {
			t.Error("wrapped error should be fatal")
		}
		last := hook.LastEntry()
		if last == nil || last.Level != logrus.ErrorLevel || last.Data["severity"] != "critical" {
			t.Errorf("have log entry %+v", last)
		}
	})
	t.Run("missing column", func(t *testing.T) {
		if _, _, err := ing.ReadColumn(&p.Settings, "asset", "exact.csv", "c"); err == nil {
			t.Error("expected an error")
		}
	})
	t.Run("missing file", func(t *testing.T) {
		_, _, err := ing.ReadColumn(&p.Settings, "asset", "none.csv", "a")
		if err == nil {
			t.Fatal("expected an error")
		}
		if IsFatal(err) {
			t.Error("a missing file is not a length error")
		}
	})
	t.Run("not finite", func(t *testing.T) {
		for _, cell := range []string{"NaN", "Inf", "-Inf"} {
			name := "bad_" + cell + ".csv"
			data := "a\n1\n" + cell + "\n" + strings.Repeat("1\n", 22)
			path := filepath.Join(ing.InputFolder, TimeseriesDir, name)
			if err := ioutil.WriteFile(path, []byte(data), 0644); err != nil {
				t.Fatal(err)
			}
			_, _, err := ing.ReadColumn(&p.Settings, "asset", name, "a")
			if err == nil || !strings.Contains(err.Error(), "row 3") {
				t.Errorf("%s: have error %v", cell, err)
			}
		}
	})
	t.Run("cached copies", func(t *testing.T) {
		s1, _, err := ing.ReadColumn(&p.Settings, "asset", "exact.csv", "a")
		if err != nil {
			t.Fatal(err)
		}
		s1[0] = -100
		s2, _, err := ing.ReadColumn(&p.Settings, "asset", "exact.csv", "a")
		if err != nil {
			t.Fatal(err)
		}
		if s2[0] != 1 {
			t.Errorf("cached series was modified: %v", s2[0])
		}
	})
}

func TestReadColumnXLSX(t *testing.T) {
	ing, _, cleanup := newTestIngestor(t)
	defer cleanup()
	p := testProject(t, 1)

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	if err != nil {
		t.Fatal(err)
	}
	sheet.AddRow().AddCell().SetString("demand")
	for _, v := range ramp(24) {
		sheet.AddRow().AddCell().SetString(fmt.Sprint(v))
	}
	if err := f.Save(filepath.Join(ing.InputFolder, TimeseriesDir, "demand.xlsx")); err != nil {
		t.Fatal(err)
	}

	s, header, err := ing.ReadColumn(&p.Settings, "asset", "demand.xlsx", "demand")
	if err != nil {
		t.Fatal(err)
	}
	if header != "demand" {
		t.Errorf("header %q", header)
	}
	if !reflect.DeepEqual(s, ramp(24)) {
		t.Errorf("have %v", s)
	}
}

func TestIngestInput(t *testing.T) {
	ing, hook, cleanup := newTestIngestor(t)
	defer cleanup()
	archive := make(countingArchiver)
	plots := new(recordingPlotter)
	ing.Archiver = archive
	ing.Plotter = plots
	p := testProject(t, 1)
	demand := ramp(24).Scaled(0.5)
	writeTimeseries(t, ing, "profiles.csv", []string{"demand", "pv", "zero"},
		demand, ramp(24).Scaled(0.1), make(Series, 24))

	t.Run("demand", func(t *testing.T) {
		a := &Asset{Label: "Demand", Input: &InputRef{FileName: "profiles.csv", Header: "demand", Unit: "kWh"}}
		if err := ing.IngestInput(p, a, true); err != nil {
			t.Fatal(err)
		}
		if a.TimeseriesPeak.Value != demand.Peak() {
			t.Errorf("peak %g", a.TimeseriesPeak.Value)
		}
		if different(a.TimeseriesTotal.Value, 150, testTolerance) {
			t.Errorf("total %g", a.TimeseriesTotal.Value)
		}
		if different(a.TimeseriesAverage.Value, stats.StatsMean(demand), testTolerance) {
			t.Errorf("average %g", a.TimeseriesAverage.Value)
		}
		if a.TimeseriesNormalized != nil {
			t.Error("timeseries of an asset that is not optimized should not be normalized")
		}
		if !reflect.DeepEqual(p.Plots.Demands, []string{"Demand_demand.png"}) {
			t.Errorf("demand plots %v", p.Plots.Demands)
		}
	})
	t.Run("normalized", func(t *testing.T) {
		a := &Asset{Label: "PV", OptimizeCap: boolPtr(true),
			Input: &InputRef{FileName: "profiles.csv", Header: "pv", Unit: "kWh"}}
		if err := ing.IngestInput(p, a, false); err != nil {
			t.Fatal(err)
		}
		if peak := a.TimeseriesNormalized.Peak(); different(peak, 1, testTolerance) {
			t.Errorf("normalized peak %g", peak)
		}
		if !reflect.DeepEqual(p.Plots.Resources, []string{"PV_pv.png"}) {
			t.Errorf("resource plots %v", p.Plots.Resources)
		}
	})
	t.Run("zero peak", func(t *testing.T) {
		hook.Reset()
		a := &Asset{Label: "Zero", OptimizeCap: boolPtr(true),
			Input: &InputRef{FileName: "profiles.csv", Header: "zero", Unit: "kWh"}}
		if err := ing.IngestInput(p, a, false); err != nil {
			t.Fatal(err)
		}
		if a.TimeseriesNormalized != nil {
			t.Error("a zero timeseries cannot be normalized")
		}
		if n := countEntries(hook, logrus.WarnLevel, "peak of zero"); n != 1 {
			t.Errorf("have %d warnings", n)
		}
	})
	t.Run("no input", func(t *testing.T) {
		a := &Asset{Label: "None"}
		if err := ing.IngestInput(p, a, false); err != nil {
			t.Fatal(err)
		}
		if a.Timeseries != nil || a.TimeseriesPeak != nil {
			t.Error("asset without input should be unchanged")
		}
	})
	if archive["profiles.csv"] != 1 {
		t.Errorf("profiles.csv was archived %d times", archive["profiles.csv"])
	}
}

func TestNormalizeWarnings(t *testing.T) {
	ing, hook, cleanup := newTestIngestor(t)
	defer cleanup()
	a := &Asset{
		Label:          "Odd",
		Timeseries:     Series{-1, 0.5, 2},
		TimeseriesPeak: &Param{Value: 1},
	}
	ing.normalize(a)
	if n := countEntries(hook, logrus.WarnLevel, "greater than 1"); n != 1 {
		t.Errorf("have %d warnings about values above 1", n)
	}
	if n := countEntries(hook, logrus.WarnLevel, "negative"); n != 1 {
		t.Errorf("have %d warnings about negative values", n)
	}
}

func TestIngestQuantity(t *testing.T) {
	ing, _, cleanup := newTestIngestor(t)
	defer cleanup()
	p := testProject(t, 1)
	writeTimeseries(t, ing, "eff.csv", []string{"el", "th"}, ramp(24).Scaled(0.01), ramp(24).Scaled(0.02))

	t.Run("file", func(t *testing.T) {
		ref := FileRef{FileName: "eff.csv", Header: "el"}
		q := &Quantity{Value: ref}
		if err := ing.IngestQuantity(p, "CHP", q); err != nil {
			t.Fatal(err)
		}
		if _, ok := q.Value.(Series); !ok {
			t.Errorf("have %T", q.Value)
		}
		if !reflect.DeepEqual(q.ValueInfo, []FileRef{ref}) {
			t.Errorf("value info %v", q.ValueInfo)
		}
	})
	t.Run("multibus", func(t *testing.T) {
		ref := FileRef{FileName: "eff.csv", Header: "th"}
		q := &Quantity{Value: MultiBus{Scalar(0.4), ref}}
		if err := ing.IngestQuantity(p, "CHP", q); err != nil {
			t.Fatal(err)
		}
		mb := q.Value.(MultiBus)
		if mb[0] != Scalar(0.4) {
			t.Errorf("first bus %v", mb[0])
		}
		if s, ok := mb[1].(Series); !ok || len(s) != 24 {
			t.Errorf("second bus %v", mb[1])
		}
		if !reflect.DeepEqual(q.ValueInfo, []FileRef{ref}) {
			t.Errorf("value info %v", q.ValueInfo)
		}
	})
	t.Run("scalar", func(t *testing.T) {
		q := &Quantity{Value: Scalar(0.9)}
		if err := ing.IngestQuantity(p, "CHP", q); err != nil {
			t.Fatal(err)
		}
		if q.Value != Scalar(0.9) || q.ValueInfo != nil {
			t.Errorf("have %+v", q)
		}
	})
	t.Run("nil", func(t *testing.T) {
		if err := ing.IngestQuantity(p, "CHP", nil); err != nil {
			t.Error(err)
		}
	})
}
