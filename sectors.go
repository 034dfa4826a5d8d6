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
	"strings"

	"github.com/sirupsen/logrus"
)

// energyVectors returns the energy carrier declared by each asset, storage
// and provider in p, which may contain duplicates.
func (p *Project) energyVectors() []string {
	var o []string
	for _, a := range p.Providers {
		o = append(o, a.EnergyVector)
	}
	for _, a := range p.Conversion {
		o = append(o, a.EnergyVector)
	}
	for _, a := range p.Storage {
		o = append(o, a.EnergyVector)
	}
	for _, a := range p.Production {
		o = append(o, a.EnergyVector)
	}
	for _, a := range p.Consumption {
		o = append(o, a.EnergyVector)
	}
	return o
}

// SectorLabel returns the label of the sector for an energy carrier.
func SectorLabel(energyVector string) string {
	return strings.Replace(energyVector, "_", " ", -1)
}

// sectorLabels returns the sector labels in p in sorted order.
func (p *Project) sectorLabels() []string {
	o := make([]string, 0, len(p.Sectors))
	for _, l := range p.Sectors {
		o = append(o, l)
	}
	sort.Strings(o)
	return o
}

// IdentifyEnergyVectors returns a stage that collects the distinct energy
// carriers declared by the assets in a project and stores them as sectors.
func IdentifyEnergyVectors(log logrus.FieldLogger) Stage {
	return Stage{
		Name:     "identify energy vectors",
		Provides: []Product{SectorSet},
		Run: func(p *Project) error {
			p.Sectors = make(map[string]string)
			var names []string
			for _, ev := range p.energyVectors() {
				if ev == "" {
					continue
				}
				if _, ok := p.Sectors[ev]; !ok {
					p.Sectors[ev] = SectorLabel(ev)
					names = append(names, ev)
				}
			}
			sort.Strings(names)
			log.Infof("The energy system includes the following energy vectors: %s",
				strings.Join(names, ", "))
			return nil
		},
	}
}
