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
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// newTestIngestor returns an ingestor reading from a new temporary
// directory, and a hook recording everything it logs. The returned
// function removes the directory.
func newTestIngestor(t *testing.T) (*Ingestor, *test.Hook, func()) {
	dir, err := ioutil.TempDir("", "enprep_test")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, TimeseriesDir), os.ModePerm); err != nil {
		t.Fatal(err)
	}
	logger, hook := test.NewNullLogger()
	logger.Level = logrus.DebugLevel
	return NewIngestor(dir, logger), hook, func() { os.RemoveAll(dir) }
}

// writeTimeseries writes a csv file with one column per header to the
// timeseries directory of ing.
func writeTimeseries(t *testing.T, ing *Ingestor, name string, headers []string, columns ...[]float64) {
	var b strings.Builder
	b.WriteString(strings.Join(headers, ",") + "\n")
	for i := range columns[0] {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = fmt.Sprint(c[i])
		}
		b.WriteString(strings.Join(row, ",") + "\n")
	}
	path := filepath.Join(ing.InputFolder, TimeseriesDir, name)
	if err := ioutil.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
}

// testProject returns a project evaluated over the given number of days
// at an hourly timestep, with normalized settings and economic factors.
func testProject(t *testing.T, days float64) *Project {
	p := NewProject()
	p.Settings = SimulationSettings{
		Start:           "2018-01-01 00:00",
		EvaluatedPeriod: Param{Value: days, Unit: "days"},
		Timestep:        Param{Value: 60, Unit: "minutes"},
	}
	p.Economics = EconomicParameters{
		ProjectDuration: Param{Value: 20, Unit: "year"},
		DiscountFactor:  Param{Value: 0.08, Unit: "factor"},
		Currency:        "EUR",
	}
	for _, s := range []Stage{NormalizeSettings(), CalculateEconomics()} {
		if err := s.Run(p); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

// ramp returns the series 1, 2, ..., n.
func ramp(n int) Series {
	o := make(Series, n)
	for i := range o {
		o[i] = float64(i + 1)
	}
	return o
}

// countEntries returns the number of log entries at the given level
// whose message contains substr.
func countEntries(hook *test.Hook, level logrus.Level, substr string) int {
	var n int
	for _, e := range hook.Entries {
		if e.Level == level && strings.Contains(e.Message, substr) {
			n++
		}
	}
	return n
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

func newNullLogger() (*logrus.Logger, *test.Hook) {
	l, hook := test.NewNullLogger()
	l.Level = logrus.DebugLevel
	return l, hook
}
