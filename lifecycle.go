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

	"github.com/sirupsen/logrus"
)

// LifecycleCosts holds the discounted costs of an asset over the project.
type LifecycleCosts struct {
	// LifetimeCapexVar is the present value of the initial investment and
	// all replacements per unit of capacity.
	LifetimeCapexVar Param `json:"lifetime_capex_var"`

	// AnnuityCapexOpexVar is the annual capital charge plus fixed
	// operation and maintenance costs.
	AnnuityCapexOpexVar Param `json:"annuity_capex_opex_var"`

	LifetimeOpexFix Param `json:"lifetime_opex_fix"`

	// LifetimeOpexVar is the present value of the variable operating cost.
	// For a timeseries cost it is based on the mean of the series.
	LifetimeOpexVar Param `json:"lifetime_opex_var"`

	// LifetimeOpexVarSeries is the variable operating cost timeseries
	// multiplied by the annuity factor. It is only set for timeseries costs.
	LifetimeOpexVarSeries Series `json:"lifetime_opex_var_timeseries,omitempty"`

	// SimulationAnnuity is AnnuityCapexOpexVar scaled to the
	// evaluated period.
	SimulationAnnuity Param `json:"simulation_annuity"`
}

// DefineMissingCostData reads any timeseries of the variable operating cost
// of a and fills in cost fields that have not been specified.
func (ing *Ingestor) DefineMissingCostData(p *Project, c CostedAsset) error {
	a := c.costed()
	if a.OpexVar != nil {
		if err := ing.IngestQuantity(p, a.Label, a.OpexVar); err != nil {
			return err
		}
	}

	var added []string
	if a.OptimizeCap == nil {
		f := false
		a.OptimizeCap = &f
		added = append(added, "optimizeCap")
	}
	if a.Unit == "" {
		a.Unit = "?"
		added = append(added, "unit")
	}
	if a.InstalledCap == nil {
		a.InstalledCap = &Param{Value: 0, Unit: a.Unit}
		added = append(added, "installedCap")
	}
	if a.CapexFix == nil {
		a.CapexFix = &Param{Value: 0, Unit: "currency"}
		added = append(added, "capex_fix")
	}
	if a.CapexVar == nil {
		a.CapexVar = &Param{Value: 0, Unit: "currency/unit"}
		added = append(added, "capex_var")
	}
	if a.OpexFix == nil {
		a.OpexFix = &Param{Value: 0, Unit: "currency/year"}
		added = append(added, "opex_fix")
	}
	if a.OpexVar == nil {
		a.OpexVar = &Quantity{Value: Scalar(0), Unit: "currency/unit/year"}
		added = append(added, "opex_var")
	}
	if a.Lifetime == nil {
		a.Lifetime = &Param{Value: p.Economics.ProjectDuration.Value, Unit: "year"}
		added = append(added, "lifetime")
	}
	if len(added) > 0 {
		ing.Log.WithField("asset", a.Label).Debugf("added basic costs: %s", strings.Join(added, " "))
	}
	return nil
}

// EvaluateLifetimeCosts calculates the lifecycle costs of c from its cost
// fields and the economic parameters of p. Missing cost fields are set to
// zero. The variable operating cost must not contain unread file references.
func EvaluateLifetimeCosts(p *Project, c CostedAsset, log logrus.FieldLogger) error {
	a := c.costed()
	log = log.WithField("asset", a.Label)
	e := &p.Economics

	if a.CapexVar == nil {
		a.CapexVar = &Param{Unit: "currency/unit"}
		log.Error("asset is incomplete, as capex_var is missing")
	}
	if a.OpexFix == nil {
		a.OpexFix = &Param{Unit: "currency/year"}
		log.Error("asset is incomplete, as opex_fix is missing")
	}
	if a.OpexVar == nil {
		a.OpexVar = &Quantity{Value: Scalar(0), Unit: "currency/unit/year"}
		log.Error("asset is incomplete, as opex_var is missing")
	}
	lifetime := e.ProjectDuration.Value
	if a.Lifetime != nil {
		lifetime = a.Lifetime.Value
	}
	if lifetime <= 0 {
		return fmt.Errorf("enprep: lifetime of %s must be positive but is %g", a.Label, lifetime)
	}

	costs := new(LifecycleCosts)
	if err := lifetimeOpexVar(costs, a.OpexVar, e.AnnuityFactor.Value); err != nil {
		return fmt.Errorf("enprep: %s: %v", a.Label, err)
	}

	costs.LifetimeCapexVar = Param{
		Value: CapexFromInvestment(a.CapexVar.Value, lifetime, e.ProjectDuration.Value,
			e.DiscountFactor.Value, e.Tax.Value),
		Unit: a.CapexVar.Unit,
	}
	costs.AnnuityCapexOpexVar = Param{
		Value: Annuity(costs.LifetimeCapexVar.Value, e.CRF.Value) + a.OpexFix.Value,
		Unit:  costs.LifetimeCapexVar.Unit + "/a",
	}
	costs.LifetimeOpexFix = Param{
		Value: PresentValueFromAnnuity(a.OpexFix.Value, e.AnnuityFactor.Value),
		Unit:  strings.TrimSuffix(strings.TrimSuffix(a.OpexFix.Unit, "/year"), "/a"),
	}
	costs.SimulationAnnuity = Param{
		Value: SimulationAnnuity(costs.AnnuityCapexOpexVar.Value, p.Settings.EvaluatedPeriod.Value),
		Unit:  "currency/unit/simulation period",
	}
	a.LifecycleCosts = costs
	return nil
}

// lifetimeOpexVar sets the lifetime variable operating cost for each shape
// of cost value. For a MultiBus value the entry of the first bus is used.
func lifetimeOpexVar(costs *LifecycleCosts, q *Quantity, annuityFactor float64) error {
	switch v := q.Value.(type) {
	case Scalar:
		costs.LifetimeOpexVar = Param{Value: PresentValueFromAnnuity(float64(v), annuityFactor), Unit: "?"}
	case MultiBus:
		if len(v) == 0 {
			return fmt.Errorf("opex_var is an empty list")
		}
		first, ok := meanOf(v[0])
		if !ok {
			return fmt.Errorf("opex_var of the first bus has unsupported type %T", v[0])
		}
		costs.LifetimeOpexVar = Param{Value: PresentValueFromAnnuity(first, annuityFactor), Unit: "?"}
	case Series:
		costs.LifetimeOpexVar = Param{Value: PresentValueFromAnnuity(v.Mean(), annuityFactor), Unit: "?"}
		costs.LifetimeOpexVarSeries = v.Scaled(annuityFactor)
	default:
		return fmt.Errorf("opex_var is neither a number, list nor timeseries but %T", q.Value)
	}
	return nil
}
