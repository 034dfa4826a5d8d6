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
	"errors"
	"fmt"
)

// PeakDemandPricingPeriodsError is returned when peak demand is to be billed
// in more than one period per year but less than a full year is simulated.
type PeakDemandPricingPeriodsError struct {
	Provider        string
	Periods         int
	EvaluatedPeriod float64
}

func (e *PeakDemandPricingPeriodsError) Error() string {
	return fmt.Sprintf("enprep: provider %s has %d peak demand pricing periods, "+
		"which requires an evaluated period of 365 days, but the evaluated period is %g days",
		e.Provider, e.Periods, e.EvaluatedPeriod)
}

// TimeseriesTooShortError is returned when a timeseries file has fewer rows
// than there are simulation periods.
type TimeseriesTooShortError struct {
	Asset   string
	File    string
	Rows    int
	Periods int
}

func (e *TimeseriesTooShortError) Error() string {
	return fmt.Sprintf("enprep: timeseries of %s (%s) has %d rows but the evaluated period has %d periods",
		e.Asset, e.File, e.Rows, e.Periods)
}

// IsFatal reports whether err is, or wraps, a fatal configuration or
// data error.
func IsFatal(err error) bool {
	var pe *PeakDemandPricingPeriodsError
	var te *TimeseriesTooShortError
	return errors.As(err, &pe) || errors.As(err, &te)
}
