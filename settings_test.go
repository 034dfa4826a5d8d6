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
	"testing"
	"time"
)

func TestNormalizeSettings(t *testing.T) {
	for _, test := range []struct {
		name           string
		start          string
		days, timestep float64
		periods        int
		end            time.Time
	}{
		{
			name:     "year hourly",
			start:    "2018-01-01 00:00",
			days:     365,
			timestep: 60,
			periods:  8760,
			end:      time.Date(2018, time.December, 31, 23, 0, 0, 0, time.UTC),
		},
		{
			name:     "week hourly",
			start:    "2020-03-02",
			days:     7,
			timestep: 60,
			periods:  168,
			end:      time.Date(2020, time.March, 8, 23, 0, 0, 0, time.UTC),
		},
		{
			name:     "day quarter hourly",
			start:    "2019-06-01T00:00:00Z",
			days:     1,
			timestep: 15,
			periods:  93,
			end:      time.Date(2019, time.June, 1, 23, 0, 0, 0, time.UTC),
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			p := NewProject()
			p.Settings = SimulationSettings{
				Start:           test.start,
				EvaluatedPeriod: Param{Value: test.days, Unit: "days"},
				Timestep:        Param{Value: test.timestep, Unit: "minutes"},
			}
			if err := NormalizeSettings().Run(p); err != nil {
				t.Fatal(err)
			}
			s := p.Settings
			if s.Periods != test.periods {
				t.Errorf("periods: have %d, want %d", s.Periods, test.periods)
			}
			if len(s.TimeIndex) != s.Periods {
				t.Errorf("time index has %d entries but there are %d periods", len(s.TimeIndex), s.Periods)
			}
			if !s.EndDate.Equal(test.end) {
				t.Errorf("end date: have %v, want %v", s.EndDate, test.end)
			}
			if !s.TimeIndex[0].Equal(s.StartDate) {
				t.Errorf("time index starts at %v rather than %v", s.TimeIndex[0], s.StartDate)
			}
			step := time.Duration(test.timestep) * time.Minute
			for i := 1; i < len(s.TimeIndex); i++ {
				if d := s.TimeIndex[i].Sub(s.TimeIndex[i-1]); d != step {
					t.Fatalf("step %d is %v", i, d)
				}
			}
		})
	}
}

func TestNormalizeSettingsInvalid(t *testing.T) {
	for _, s := range []SimulationSettings{
		{Start: "yesterday", EvaluatedPeriod: Param{Value: 1}, Timestep: Param{Value: 60}},
		{Start: "2018-01-01", EvaluatedPeriod: Param{Value: 0}, Timestep: Param{Value: 60}},
		{Start: "2018-01-01", EvaluatedPeriod: Param{Value: 1}, Timestep: Param{Value: 0}},
	} {
		if err := s.Normalize(); err == nil {
			t.Errorf("%+v: expected an error", s)
		}
	}
}
