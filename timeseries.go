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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ctessum/requestcache"
	"github.com/golang/groupcache/lru"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/enprep/internal/hash"
)

// TimeseriesDir is the directory within the input folder that holds
// timeseries files.
const TimeseriesDir = "time_series"

// Archiver keeps copies of the timeseries files read during preprocessing.
type Archiver interface {
	Archive(ctx context.Context, path string) error
}

// Plotter draws a timeseries and returns the location of the figure.
type Plotter interface {
	PlotTimeseries(index []time.Time, values Series, label, header string) (string, error)
}

// Ingestor reads timeseries files and attaches their contents to assets.
type Ingestor struct {
	// InputFolder holds the TimeseriesDir directory.
	InputFolder string

	// Archiver, if not nil, receives every file that is read.
	Archiver Archiver

	// Plotter, if not nil, draws every input and cost timeseries.
	Plotter Plotter

	Log logrus.FieldLogger

	tables   *requestcache.Cache
	columns  *lru.Cache
	archived map[string]bool
}

// NewIngestor returns an Ingestor reading from the given input folder.
// If log is nil the standard logger is used.
func NewIngestor(inputFolder string, log logrus.FieldLogger) *Ingestor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Ingestor{
		InputFolder: inputFolder,
		Log:         log,
		tables:      newTableCache(),
		columns:     lru.New(256),
		archived:    make(map[string]bool),
	}
}

type columnKey struct {
	Path, Header string
	Periods      int
}

// ReadColumn reads the column with the given header from the named file
// in the timeseries directory and matches it to the number of periods in s.
// Files with exactly as many rows as periods are used as they are and longer
// files are truncated. Shorter files cause a *TimeseriesTooShortError.
// The header of the column that was read is also returned.
func (ing *Ingestor) ReadColumn(s *SimulationSettings, owner, fileName, header string) (Series, string, error) {
	path := filepath.Join(ing.InputFolder, TimeseriesDir, fileName)
	key := hash.Hash(columnKey{Path: path, Header: header, Periods: s.Periods})
	log := ing.Log.WithFields(logrus.Fields{"asset": owner, "file": path})

	if _, err := os.Stat(path); err != nil {
		return nil, "", fmt.Errorf("enprep: timeseries file of %s: %v", owner, err)
	}

	t, err := loadTable(ing.tables, path)
	if err != nil {
		return nil, "", err
	}
	i, err := t.columnIndex(header)
	if err != nil {
		return nil, "", fmt.Errorf("enprep: reading timeseries of %s from %s: %v", owner, path, err)
	}
	if header == "" && len(t.header) > 0 {
		header = strings.TrimSpace(t.header[0])
	}

	if v, ok := ing.columns.Get(key); ok {
		return v.(Series).Scaled(1), header, nil
	}

	switch rows := len(t.rows); {
	case rows == s.Periods:
		log.Debug("added timeseries")
	case rows > s.Periods:
		log.Infof("Provided timeseries is longer than the evaluated period (%d > %d rows). Excess data dropped.",
			rows, s.Periods)
	default:
		log.WithField("severity", "critical").Errorf(
			"Input error! Provided timeseries is shorter than the evaluated period (%d < %d rows). Operation terminated.",
			rows, s.Periods)
		return nil, "", &TimeseriesTooShortError{Asset: owner, File: path, Rows: rows, Periods: s.Periods}
	}

	series, err := t.column(i, s.Periods)
	if err != nil {
		return nil, "", fmt.Errorf("enprep: reading timeseries of %s from %s: %v", owner, path, err)
	}
	ing.columns.Add(key, series)

	if err := ing.archive(path); err != nil {
		return nil, "", err
	}
	return series.Scaled(1), header, nil
}

// archive copies the file at path to the archive, once per file.
func (ing *Ingestor) archive(path string) error {
	if ing.Archiver == nil || ing.archived[path] {
		return nil
	}
	if err := ing.Archiver.Archive(context.TODO(), path); err != nil {
		return fmt.Errorf("enprep: archiving %s: %v", path, err)
	}
	ing.archived[path] = true
	ing.Log.WithField("file", path).Debug("copied timeseries to output inputs")
	return nil
}

// IngestInput reads the production or demand profile of a and derives its
// peak, total and average. If the capacity of a is to be optimized, the
// profile is also normalized to a peak of 1. demand specifies whether the
// profile describes a demand rather than a resource.
func (ing *Ingestor) IngestInput(p *Project, a *Asset, demand bool) error {
	ref := a.Input
	if ref == nil {
		return nil
	}
	s, header, err := ing.ReadColumn(&p.Settings, a.Label, ref.FileName, ref.Header)
	if err != nil {
		return err
	}
	a.Timeseries = s
	a.TimeseriesPeak = &Param{Value: s.Peak(), Unit: ref.Unit}
	a.TimeseriesTotal = &Param{Value: s.Total(), Unit: ref.Unit}
	a.TimeseriesAverage = &Param{Value: s.Mean(), Unit: ref.Unit}

	if a.optimized() {
		ing.normalize(a)
	}
	ing.plot(p, s, a.Label, header, demand)
	return nil
}

// normalize sets the normalized timeseries of a.
func (ing *Ingestor) normalize(a *Asset) {
	log := ing.Log.WithField("asset", a.Label)
	peak := a.TimeseriesPeak.Value
	if peak == 0 {
		log.Warn("timeseries has a peak of zero and cannot be normalized")
		return
	}
	log.Debug("normalizing timeseries")
	a.TimeseriesNormalized = a.Timeseries.Scaled(1 / peak)
	var above, below bool
	for _, v := range a.TimeseriesNormalized {
		above = above || v > 1
		below = below || v < 0
	}
	if above {
		log.Warn("timeseries not normalized, greater than 1")
	}
	if below {
		log.Warn("timeseries negative")
	}
}

// IngestQuantity replaces file references in q by the timeseries they refer
// to. A single reference is replaced by a Series and references within a
// MultiBus are replaced entry by entry. The references are kept in
// q.ValueInfo. Other values are left unchanged.
func (ing *Ingestor) IngestQuantity(p *Project, owner string, q *Quantity) error {
	if q == nil {
		return nil
	}
	switch v := q.Value.(type) {
	case FileRef:
		s, header, err := ing.ReadColumn(&p.Settings, owner, v.FileName, v.Header)
		if err != nil {
			return err
		}
		q.Value = s
		q.ValueInfo = []FileRef{v}
		ing.plot(p, s, owner, header, false)
	case MultiBus:
		resolved := make(MultiBus, len(v))
		var info []FileRef
		for i, e := range v {
			ref, ok := e.(FileRef)
			if !ok {
				resolved[i] = e
				continue
			}
			s, _, err := ing.ReadColumn(&p.Settings, owner, ref.FileName, ref.Header)
			if err != nil {
				return err
			}
			resolved[i] = s
			info = append(info, ref)
		}
		q.Value = resolved
		if len(info) > 0 {
			q.ValueInfo = info
		}
	}
	return nil
}

// plot draws s if a Plotter is configured and records the figure location.
// Plotting failures are logged but not returned.
func (ing *Ingestor) plot(p *Project, s Series, label, header string, demand bool) {
	if ing.Plotter == nil {
		return
	}
	ing.Log.WithField("asset", label).Infof("creating plot of parameter %s", header)
	path, err := ing.Plotter.PlotTimeseries(p.Settings.TimeIndex, s, label, header)
	if err != nil {
		ing.Log.WithField("asset", label).Warnf("plotting timeseries: %v", err)
		return
	}
	if demand {
		p.Plots.Demands = append(p.Plots.Demands, path)
	} else {
		p.Plots.Resources = append(p.Plots.Resources, path)
	}
}
