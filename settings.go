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
	"strings"
	"time"
)

// SimulationSettings specifies the simulated time horizon.
type SimulationSettings struct {
	// Start is the start date as given by the user.
	Start string `json:"-"`

	// EvaluatedPeriod is the length of the simulation in days.
	EvaluatedPeriod Param `json:"evaluated_period"`

	// Timestep is the length of each period in minutes.
	Timestep Param `json:"timestep"`

	// InputFolder holds a "time_series" directory with the timeseries
	// files referenced by assets.
	InputFolder string `json:"path_input_folder,omitempty"`

	// OutputFolder is where processed data are written.
	OutputFolder string `json:"path_output_folder,omitempty"`

	// The fields below are set by NormalizeSettings.
	StartDate time.Time   `json:"start_date"`
	EndDate   time.Time   `json:"end_date"`
	TimeIndex []time.Time `json:"time_index"`
	Periods   int         `json:"periods"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDate parses a date in any of dateLayouts. Dates without a
// time zone are taken to be in UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("enprep: invalid start date %q", s)
}

// Normalize sets the start and end date, the time index and the number of
// periods. The end date is start + days − 1 hour, not − 1 day, so that the
// last evaluated day is included: 365 days at an hourly timestep give 8760
// periods.
func (s *SimulationSettings) Normalize() error {
	start, err := parseDate(s.Start)
	if err != nil {
		return err
	}
	if s.EvaluatedPeriod.Value <= 0 {
		return fmt.Errorf("enprep: evaluated period must be positive but is %g days", s.EvaluatedPeriod.Value)
	}
	step := time.Duration(s.Timestep.Value * float64(time.Minute))
	if step <= 0 {
		return fmt.Errorf("enprep: timestep must be positive but is %g minutes", s.Timestep.Value)
	}
	s.StartDate = start
	s.EndDate = start.Add(time.Duration(s.EvaluatedPeriod.Value*24*float64(time.Hour)) - time.Hour)

	s.TimeIndex = s.TimeIndex[:0]
	for t := start; !t.After(s.EndDate); t = t.Add(step) {
		s.TimeIndex = append(s.TimeIndex, t)
	}
	s.Periods = len(s.TimeIndex)
	return nil
}

// NormalizeSettings returns a stage that derives the time index of
// the simulation.
func NormalizeSettings() Stage {
	return Stage{
		Name:     "normalize settings",
		Provides: []Product{TimeIndex},
		Run: func(p *Project) error {
			return p.Settings.Normalize()
		},
	}
}
