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
)

// feedinSuffix marks sinks whose price is a revenue rather than a cost.
const feedinSuffix = "feedin"

// PricingWindows returns one indicator series per peak demand pricing
// period. A single period covers the whole time index. Otherwise the year
// starting at the start date is divided into periods of 12/periods calendar
// months, and each series is 1 during its period and 0 elsewhere. periods
// must divide 12.
func PricingWindows(s *SimulationSettings, periods int) ([]Series, error) {
	if periods < 1 || 12%periods != 0 {
		return nil, fmt.Errorf("enprep: the number of peak demand pricing periods must divide 12 but is %d", periods)
	}
	if periods == 1 {
		w := make(Series, len(s.TimeIndex))
		for j := range w {
			w[j] = 1
		}
		return []Series{w}, nil
	}
	months := 12 / periods
	o := make([]Series, periods)
	for i := range o {
		from := s.StartDate.AddDate(0, i*months, 0)
		to := s.StartDate.AddDate(0, (i+1)*months, 0)
		w := make(Series, len(s.TimeIndex))
		for j, t := range s.TimeIndex {
			if !t.Before(from) && t.Before(to) {
				w[j] = 1
			}
		}
		o[i] = w
	}
	return o, nil
}

// defaultPrice returns q, or a zero price if q is nil.
func (ing *Ingestor) defaultPrice(q *Quantity, owner, name, unit string) Quantity {
	if q != nil {
		return *q
	}
	ing.Log.WithField("asset", owner).Warnf("%s is not defined and is set to 0", name)
	return Quantity{Value: Scalar(0), Unit: unit}
}

// DefineDSO creates the sources supplying energy from the provider with
// the given id and the sink feeding energy into it. If peak demand is billed
// in more than one period per year, one source per period is created, each
// available only during its period, so that the peak of each period can be
// sized and priced separately.
func (ing *Ingestor) DefineDSO(p *Project, id string, d *Provider) error {
	log := ing.Log.WithField("asset", id)
	n := d.PeakDemandPricingPeriod
	if n > 1 && p.Settings.EvaluatedPeriod.Value != daysPerYear {
		return &PeakDemandPricingPeriodsError{Provider: id, Periods: n,
			EvaluatedPeriod: p.Settings.EvaluatedPeriod.Value}
	}
	windows, err := PricingWindows(&p.Settings, n)
	if err != nil {
		return err
	}
	log.Infof("Peak demand pricing is taking place %d times per year, i.e. every %d months.", n, 12/n)

	energyPrice := ing.defaultPrice(d.EnergyPrice, id, "energy_price", "currency/kWh")
	feedinTariff := ing.defaultPrice(d.FeedinTariff, id, "feedin_tariff", "currency/kWh")
	pdp := ing.defaultPrice(d.PeakDemandPricing, id, "peak_demand_pricing", "currency/kWpeak")
	for _, q := range []*Quantity{&energyPrice, &feedinTariff, &pdp} {
		if err := ing.IngestQuantity(p, d.Label, q); err != nil {
			return err
		}
	}
	d.EnergyPrice, d.FeedinTariff, d.PeakDemandPricing = &energyPrice, &feedinTariff, &pdp
	peakPrice, ok := meanOf(pdp.Value)
	if !ok {
		return fmt.Errorf("enprep: peak demand pricing of %s must be a number or timeseries but is %T", id, pdp.Value)
	}
	if _, isSeries := pdp.Value.(Series); isSeries {
		log.Debugf("The mean peak demand pricing price of %g %s is set as opex_fix of the sources of grid energy.",
			peakPrice, p.Economics.Currency)
	} else {
		log.Debugf("The peak demand pricing price of %g %s is set as opex_fix of the sources of grid energy.",
			peakPrice, p.Economics.Currency)
	}
	opexFix := Param{Value: peakPrice, Unit: "currency/kWpeak"}

	var sources []string
	for i, w := range windows {
		name := id + "_consumption"
		if n > 1 {
			name = fmt.Sprintf("%s_consumption_period_%d", id, i+1)
		}
		fix := opexFix
		if err := ing.DefineSource(p, name, energyPrice, d.OutflowDirection, w, &fix); err != nil {
			return err
		}
		sources = append(sources, name)
	}

	sink := id + "_" + feedinSuffix
	if err := ing.DefineSink(p, sink, feedinTariff, d.InflowDirection,
		&Param{Value: 0, Unit: "currency/kW"}); err != nil {
		return err
	}
	d.ConnectedConsumptionSources = sources
	d.ConnectedFeedinSink = sink
	return nil
}

// DefineSource adds a dispatchable source to the production group of p,
// supplying the given busses at the given price. availability is the
// timeseries of the share of capacity available in each period. If opexFix
// is not nil, the capacity of the source is subject to optimization and
// charged opexFix per unit.
func (ing *Ingestor) DefineSource(p *Project, id string, price Quantity, outputBus Carriers,
	availability Series, opexFix *Param) error {
	src := &Source{
		Asset: Asset{
			Label: id + " source",
			Ports: Ports{
				OutflowDirection: outputBus,
				OutputBusName:    busNames(outputBus),
			},
			Lifetime:   &Param{Value: p.Economics.ProjectDuration.Value, Unit: "year"},
			Timeseries: availability,
			MaximumCap: &MaxCap{Unit: "kWp"},
		},
		Dispatchable: true,
	}
	log := ing.Log.WithField("asset", src.Label)
	if err := ing.IngestQuantity(p, src.Label, &price); err != nil {
		return err
	}
	src.OpexVar = &price
	log.Debugf("sum of timeseries = %g", availability.Total())

	optimize := opexFix != nil
	src.OptimizeCap = &optimize
	if optimize {
		src.OpexFix = opexFix
		peak := availability.Peak()
		src.TimeseriesPeak = &Param{Value: peak, Unit: "kW"}
		if peak > 0 {
			src.TimeseriesNormalized = availability.Scaled(1 / peak)
		}
		if s, ok := price.Value.(Series); ok {
			log.Warnf("Attention! Source is created with a price defined as a timeseries (average: %g).", s.Mean())
		} else {
			log.Warnf("Attention! Source is created with a price of %v.", price.Value)
		}
	}

	p.Production[id] = src
	for _, b := range outputBus {
		p.UpdateBus(b, id, src.Label, ing.Log)
	}
	return nil
}

// DefineSink adds a sink to the consumption group of p, drawing from the
// given busses at the given price. Sinks whose id ends in "feedin" earn the
// price rather than pay it, so their price is stored negated. If capexVar
// is not nil, the capacity of the sink is subject to optimization.
func (ing *Ingestor) DefineSink(p *Project, id string, price Quantity, inputBus Carriers, capexVar *Param) error {
	sink := &Sink{
		Asset: Asset{
			Label: id + "_sink",
			Ports: Ports{
				InflowDirection: inputBus,
				InputBusName:    busNames(inputBus),
			},
			Lifetime: &Param{Value: p.Economics.ProjectDuration.Value, Unit: "year"},
		},
	}
	if err := ing.IngestQuantity(p, sink.Label, &price); err != nil {
		return err
	}
	if strings.HasSuffix(id, feedinSuffix) {
		price.Value = negate(price.Value)
	}
	sink.OpexVar = &price

	optimize := capexVar != nil
	sink.OptimizeCap = &optimize
	if optimize {
		sink.CapexVar = capexVar
	}

	p.Consumption[id] = sink
	for _, b := range inputBus {
		p.UpdateBus(b, id, sink.Label, ing.Log)
	}
	return nil
}
