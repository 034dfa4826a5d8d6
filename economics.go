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
	"math"
)

// daysPerYear is used to scale annual costs to the simulated period.
const daysPerYear = 365.

// EconomicParameters holds the project-wide economic assumptions.
type EconomicParameters struct {
	// ProjectDuration is the project lifetime in years.
	ProjectDuration Param `json:"project_duration"`

	// DiscountFactor is the discount rate (e.g. 0.08).
	DiscountFactor Param `json:"discount_factor"`

	// Tax is the tax rate applied to investments.
	Tax Param `json:"tax"`

	Currency string `json:"currency"`

	// AnnuityFactor and CRF are set by CalculateEconomics.
	AnnuityFactor Param `json:"annuity_factor"`
	CRF           Param `json:"crf"`
}

// AnnuityFactor returns the factor converting a constant annual payment
// over the given number of years into its present value.
func AnnuityFactor(years, discount float64) float64 {
	if discount == 0 {
		return years
	}
	return 1/discount - 1/(discount*math.Pow(1+discount, years))
}

// CRF returns the capital recovery factor, which converts a present value
// into a constant annual payment over the given number of years.
// It is the inverse of AnnuityFactor.
func CRF(years, discount float64) float64 {
	if discount == 0 {
		return 1 / years
	}
	q := math.Pow(1+discount, years)
	return discount * q / (q - 1)
}

// Annuity returns the annual payment equivalent to presentValue.
func Annuity(presentValue, crf float64) float64 {
	return presentValue * crf
}

// PresentValueFromAnnuity returns the present value of a constant annual
// payment.
func PresentValueFromAnnuity(annuity, annuityFactor float64) float64 {
	return annuity * annuityFactor
}

// SimulationAnnuity scales an annual annuity to a simulation covering
// the given number of days.
func SimulationAnnuity(annuity, days float64) float64 {
	return annuity * days / daysPerYear
}

// CapexFromInvestment returns the present value of the capital expenditure
// needed to operate an asset with the given specific investment and lifetime
// over the whole project duration. The asset is bought at the start and
// replaced at the end of each lifetime. When the last replacement lasts beyond
// the end of the project, the unused share of it is credited back, assuming
// linear depreciation. lifetime must be positive.
func CapexFromInvestment(investment, lifetime, projectDuration, discount, tax float64) float64 {
	first := investment * (1 + tax)

	investments := 1
	if lifetime != projectDuration {
		investments = int(math.Ceil(projectDuration / lifetime))
	}

	capex := first
	for k := 1; k < investments; k++ {
		capex += first / math.Pow(1+discount, float64(k)*lifetime)
	}

	if unused := float64(investments)*lifetime - projectDuration; unused > 0 {
		last := first / math.Pow(1+discount, float64(investments-1)*lifetime)
		capex -= last / lifetime * unused
	}
	return capex
}

// Calculate sets the annuity factor and capital recovery factor.
func (e *EconomicParameters) Calculate() error {
	n, d := e.ProjectDuration.Value, e.DiscountFactor.Value
	if n <= 0 {
		return fmt.Errorf("enprep: project duration must be positive but is %g years", n)
	}
	if d < 0 {
		return fmt.Errorf("enprep: discount factor must not be negative but is %g", d)
	}
	e.AnnuityFactor = Param{Value: AnnuityFactor(n, d), Unit: "?"}
	e.CRF = Param{Value: CRF(n, d), Unit: "?"}
	return nil
}

// CalculateEconomics returns a stage that calculates the project-wide
// economic factors used to cost every asset.
func CalculateEconomics() Stage {
	return Stage{
		Name:     "economic parameters",
		Provides: []Product{EconomicFactors},
		Run: func(p *Project) error {
			return p.Economics.Calculate()
		},
	}
}
