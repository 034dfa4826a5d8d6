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
	"sort"

	"github.com/sirupsen/logrus"
)

// Bus maps the identifiers of the assets attached to a bus to their labels.
type Bus map[string]string

// BusSuffix returns the name of the bus that carries the given energy carrier.
func BusSuffix(carrier string) string {
	return carrier + " bus"
}

// busNames returns the bus names for the given carriers.
func busNames(c Carriers) Carriers {
	if len(c) == 0 {
		return nil
	}
	o := make(Carriers, len(c))
	for i, name := range c {
		o[i] = BusSuffix(name)
	}
	return o
}

// UpdateBus attaches the asset with the given id and label to the bus
// carrying carrier, creating the bus if it does not exist yet.
func (p *Project) UpdateBus(carrier, id, label string, log logrus.FieldLogger) {
	if p.Busses == nil {
		p.Busses = make(map[string]Bus)
	}
	name := BusSuffix(carrier)
	b, ok := p.Busses[name]
	if !ok {
		b = make(Bus)
		p.Busses[name] = b
	}
	b[id] = label
	log.WithFields(logrus.Fields{"asset": label, "bus": name}).Debug("added asset to bus")
}

// connect attaches an asset to the busses of its inflow and outflow
// carriers and records the bus names on the asset.
func (p *Project) connect(id, label string, pt *Ports, log logrus.FieldLogger) {
	if len(pt.InflowDirection) > 0 {
		for _, c := range pt.InflowDirection {
			p.UpdateBus(c, id, label, log)
		}
		pt.InputBusName = busNames(pt.InflowDirection)
	}
	if len(pt.OutflowDirection) > 0 {
		for _, c := range pt.OutflowDirection {
			p.UpdateBus(c, id, label, log)
		}
		pt.OutputBusName = busNames(pt.OutflowDirection)
	}
}

// connectGroup attaches every asset in the named group to its busses.
func (p *Project) connectGroup(group string, log logrus.FieldLogger) {
	switch group {
	case EnergyConversion:
		for _, id := range converterIDs(p.Conversion) {
			a := p.Conversion[id]
			p.connect(id, a.Label, &a.Ports, log)
		}
	case EnergyStorage:
		for _, id := range storageIDs(p.Storage) {
			a := p.Storage[id]
			p.connect(id, a.Label, &a.Ports, log)
		}
	case EnergyProduction:
		for _, id := range sourceIDs(p.Production) {
			a := p.Production[id]
			p.connect(id, a.Label, &a.Ports, log)
		}
	case EnergyConsumption:
		for _, id := range sinkIDs(p.Consumption) {
			a := p.Consumption[id]
			p.connect(id, a.Label, &a.Ports, log)
		}
	case EnergyProviders:
		for _, id := range providerIDs(p.Providers) {
			a := p.Providers[id]
			p.connect(id, a.Label, &a.Ports, log)
		}
	}
}

// DefineBusses returns a stage that creates one bus per sector, attaches
// the conversion assets to their busses and adds an excess sink to every
// sector bus so that surplus energy can always be absorbed.
func DefineBusses(ing *Ingestor) Stage {
	log := ing.Log
	return Stage{
		Name:     "define busses",
		Requires: []Product{SectorSet, EconomicFactors},
		Provides: []Product{BusTopology},
		Run: func(p *Project) error {
			p.Busses = make(map[string]Bus)
			for _, label := range p.sectorLabels() {
				p.Busses[BusSuffix(label)] = make(Bus)
			}
			p.connectGroup(EnergyConversion, log)

			for _, label := range p.sectorLabels() {
				price := Quantity{Value: Scalar(0), Unit: "currency/kWh"}
				if err := ing.DefineSink(p, label+" excess", price, Carriers{label}, nil); err != nil {
					return err
				}
				log.WithField("sector", label).Debug("created excess sink")
			}
			return nil
		},
	}
}

// The functions below return the ids of a group in sorted order.

func providerIDs(m map[string]*Provider) []string {
	ids := make([]string, 0, len(m))
	for k := range m {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

func converterIDs(m map[string]*Converter) []string {
	ids := make([]string, 0, len(m))
	for k := range m {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

func storageIDs(m map[string]*Storage) []string {
	ids := make([]string, 0, len(m))
	for k := range m {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

func sourceIDs(m map[string]*Source) []string {
	ids := make([]string, 0, len(m))
	for k := range m {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

func sinkIDs(m map[string]*Sink) []string {
	ids := make([]string, 0, len(m))
	for k := range m {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}
