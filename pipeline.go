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

// ProjectManipulator is a function that reads and modifies a project.
type ProjectManipulator func(p *Project) error

// Product is a set of project fields that a stage fills in and that later
// stages can rely on.
type Product string

// These are the products of the default stages.
const (
	TimeIndex       Product = "time index"
	EconomicFactors Product = "economic factors"
	SectorSet       Product = "sectors"
	BusTopology     Product = "bus topology"
	CostedAssets    Product = "costed assets"
	ProcessedOutput Product = "processed output"
)

// Stage is a named preprocessing step. Requires lists the products that
// must be available before Run is called and Provides lists the products
// that are available after it returns.
type Stage struct {
	Name     string
	Requires []Product
	Provides []Product
	Run      ProjectManipulator
}

// Preprocessor runs a sequence of stages over a project.
type Preprocessor struct {
	stages []Stage
}

// NewPreprocessor returns a preprocessor for the given stages, which will
// be run in the order given. An error is returned if any stage requires a
// product that no earlier stage provides.
func NewPreprocessor(stages ...Stage) (*Preprocessor, error) {
	available := make(map[Product]bool)
	for i, s := range stages {
		if s.Run == nil {
			return nil, fmt.Errorf("enprep: stage %d (%s) has no function", i, s.Name)
		}
		var missing []string
		for _, r := range s.Requires {
			if !available[r] {
				missing = append(missing, string(r))
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("enprep: stage %s requires %s, which no earlier stage provides",
				s.Name, strings.Join(missing, ", "))
		}
		for _, p := range s.Provides {
			available[p] = true
		}
	}
	return &Preprocessor{stages: stages}, nil
}

// Stages returns the names of the stages in the order they will be run.
func (pp *Preprocessor) Stages() []string {
	o := make([]string, len(pp.stages))
	for i, s := range pp.stages {
		o[i] = s.Name
	}
	return o
}

// Run runs each stage on p in order, stopping at the first error.
func (pp *Preprocessor) Run(p *Project) error {
	for _, s := range pp.stages {
		if err := s.Run(p); err != nil {
			return err
		}
	}
	return nil
}

// DefaultStages returns the stages that turn user input into a costed
// asset graph, in the order they must run. Output stages can be appended.
func DefaultStages(ing *Ingestor) []Stage {
	return []Stage{
		NormalizeSettings(),
		CalculateEconomics(),
		IdentifyEnergyVectors(ing.Log),
		DefineBusses(ing),
		ProcessAssets(ing),
	}
}
