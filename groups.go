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

import "fmt"

// groupProcessor processes all assets in one asset group.
type groupProcessor struct {
	group   string
	process func(ing *Ingestor, p *Project) error
}

// groupOrder is the order in which asset groups are processed. Providers
// and conversion assets can create sources and sinks that are then
// processed with the production and consumption groups.
var groupOrder = []groupProcessor{
	{EnergyProviders, (*Ingestor).processProviders},
	{EnergyConversion, (*Ingestor).processConversion},
	{EnergyStorage, (*Ingestor).processStorage},
	{EnergyProduction, (*Ingestor).processProduction},
	{EnergyConsumption, (*Ingestor).processConsumption},
}

// ProcessAssets returns a stage that connects all assets to their busses,
// completes their cost data, reads their timeseries and evaluates their
// lifecycle costs, one asset group at a time.
func ProcessAssets(ing *Ingestor) Stage {
	return Stage{
		Name:     "process assets",
		Requires: []Product{TimeIndex, EconomicFactors, SectorSet, BusTopology},
		Provides: []Product{CostedAssets},
		Run: func(p *Project) error {
			for _, g := range groupOrder {
				log := ing.Log.WithField("group", g.group)
				log.Info("pre-processing all assets in asset group")
				if g.group != EnergyProviders {
					p.connectGroup(g.group, ing.Log)
				}
				if err := g.process(ing, p); err != nil {
					return err
				}
				log.Debug("finished pre-processing all assets in asset group")
			}
			ing.Log.Info("processed cost data and added economic values")
			return nil
		},
	}
}

// cost completes the cost data of c and evaluates its lifecycle costs.
func (ing *Ingestor) cost(p *Project, c CostedAsset) error {
	if err := ing.DefineMissingCostData(p, c); err != nil {
		return err
	}
	return EvaluateLifetimeCosts(p, c, ing.Log)
}

func (ing *Ingestor) processProviders(p *Project) error {
	for _, id := range providerIDs(p.Providers) {
		d := p.Providers[id]
		if err := ing.DefineDSO(p, id, d); err != nil {
			return err
		}
		if err := ing.cost(p, d); err != nil {
			return err
		}
	}
	return nil
}

func (ing *Ingestor) processConversion(p *Project) error {
	for _, id := range converterIDs(p.Conversion) {
		c := p.Conversion[id]
		if err := ing.cost(p, c); err != nil {
			return err
		}
		CheckMaximumCap(EnergyConversion, id, c, ing.Log)

		if c.Efficiency != nil {
			if _, ok := c.Efficiency.Value.(MultiBus); ok {
				ing.Log.WithField("asset", c.Label).Debug(
					"asset has multiple input or output busses with a list of efficiencies")
			}
		}
		if err := ing.IngestQuantity(p, c.Label, c.Efficiency); err != nil {
			return err
		}
	}
	return nil
}

func (ing *Ingestor) processStorage(p *Project) error {
	for _, id := range storageIDs(p.Storage) {
		s := p.Storage[id]
		for _, nc := range s.components() {
			c := nc.c
			if c == nil {
				return fmt.Errorf("enprep: storage %s has no %s", id, nc.name)
			}
			if c.Label == "" {
				c.Label = s.Label + " " + nc.name
			}
			if err := ing.cost(p, c); err != nil {
				return err
			}
			for _, q := range []*Quantity{c.Efficiency, c.SocMin, c.SocMax} {
				if err := ing.IngestQuantity(p, c.Label, q); err != nil {
					return err
				}
			}
			CheckMaximumCap(EnergyStorage, id+" "+nc.name, c, ing.Log)
		}
		s.InputBusName = busNames(s.InflowDirection)
		s.OutputBusName = busNames(s.OutflowDirection)
	}
	return nil
}

func (ing *Ingestor) processProduction(p *Project) error {
	for _, id := range sourceIDs(p.Production) {
		a := p.Production[id]
		if err := ing.cost(p, a); err != nil {
			return err
		}
		if err := ing.IngestInput(p, &a.Asset, false); err != nil {
			return err
		}
		CheckMaximumCap(EnergyProduction, id, a, ing.Log)
	}
	return nil
}

func (ing *Ingestor) processConsumption(p *Project) error {
	for _, id := range sinkIDs(p.Consumption) {
		a := p.Consumption[id]
		if err := ing.cost(p, a); err != nil {
			return err
		}
		if len(a.InputBusName) == 0 && a.EnergyVector != "" {
			a.InputBusName = Carriers{BusSuffix(a.EnergyVector)}
		}
		if err := ing.IngestInput(p, &a.Asset, true); err != nil {
			return err
		}
	}
	return nil
}
