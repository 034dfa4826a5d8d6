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

// Package enprep prepares energy system descriptions for dispatch optimization.
// It discovers the energy carriers used by a system, connects every asset to
// the busses of those carriers, reads referenced timeseries and calculates
// the annuitized lifecycle costs of each asset.
package enprep

// Version gives the version number.
const Version = "0.3.0"

// Names of the asset groups as they appear in input files.
const (
	EnergyProviders   = "energyProviders"
	EnergyConversion  = "energyConversion"
	EnergyStorage     = "energyStorage"
	EnergyProduction  = "energyProduction"
	EnergyConsumption = "energyConsumption"
)

// Project holds the configuration of an energy system. It is created from
// user input and enriched in place by each preprocessing stage.
type Project struct {
	// RunID identifies the preprocessing run that produced this project.
	RunID string `json:"run_id,omitempty"`

	Settings  SimulationSettings `json:"simulation_settings"`
	Economics EconomicParameters `json:"economic_data"`

	// ProjectData holds descriptive project information that is passed
	// through unchanged.
	ProjectData map[string]interface{} `json:"project_data,omitempty"`

	// Sectors maps each energy carrier used in the system to its label.
	Sectors map[string]string `json:"sectors,omitempty"`

	// Busses maps bus names to the assets attached to them.
	Busses map[string]Bus `json:"energyBusses,omitempty"`

	Providers   map[string]*Provider  `json:"energyProviders"`
	Conversion  map[string]*Converter `json:"energyConversion"`
	Storage     map[string]*Storage   `json:"energyStorage"`
	Production  map[string]*Source    `json:"energyProduction"`
	Consumption map[string]*Sink      `json:"energyConsumption"`

	// Plots holds the paths of input timeseries figures.
	Plots PlotPaths `json:"paths_to_plots"`
}

// PlotPaths lists the locations of figures created during preprocessing.
type PlotPaths struct {
	Demands   []string `json:"plots_demands"`
	Resources []string `json:"plots_resources"`
}

// NewProject returns a project with all asset groups initialized.
func NewProject() *Project {
	return &Project{
		ProjectData: make(map[string]interface{}),
		Providers:   make(map[string]*Provider),
		Conversion:  make(map[string]*Converter),
		Storage:     make(map[string]*Storage),
		Production:  make(map[string]*Source),
		Consumption: make(map[string]*Sink),
	}
}

// Ports holds the energy carriers an asset is connected to and the names
// of the corresponding busses.
type Ports struct {
	InflowDirection  Carriers `json:"inflow_direction,omitempty"`
	OutflowDirection Carriers `json:"outflow_direction,omitempty"`
	InputBusName     Carriers `json:"input_bus_name,omitempty"`
	OutputBusName    Carriers `json:"output_bus_name,omitempty"`
}

// InputRef refers to the file holding the production or demand profile
// of an asset. An empty Header selects the first column of the file.
type InputRef struct {
	FileName string `json:"file_name"`
	Header   string `json:"header,omitempty"`
	Unit     string `json:"unit"`
}

// Asset holds the fields common to all energy system components.
// Fields that are nil have not been specified.
type Asset struct {
	Label        string `json:"label"`
	Unit         string `json:"unit"`
	EnergyVector string `json:"energyVector,omitempty"`

	Ports

	OptimizeCap  *bool     `json:"optimizeCap,omitempty"`
	InstalledCap *Param    `json:"installedCap,omitempty"`
	MaximumCap   *MaxCap   `json:"maximumCap,omitempty"`
	CapexFix     *Param    `json:"capex_fix,omitempty"`
	CapexVar     *Param    `json:"capex_var,omitempty"`
	OpexFix      *Param    `json:"opex_fix,omitempty"`
	OpexVar      *Quantity `json:"opex_var,omitempty"`
	Lifetime     *Param    `json:"lifetime,omitempty"`

	// Input refers to the production or demand profile of the asset.
	Input *InputRef `json:"input,omitempty"`

	Timeseries           Series `json:"timeseries,omitempty"`
	TimeseriesPeak       *Param `json:"timeseries_peak,omitempty"`
	TimeseriesTotal      *Param `json:"timeseries_total,omitempty"`
	TimeseriesAverage    *Param `json:"timeseries_average,omitempty"`
	TimeseriesNormalized Series `json:"timeseries_normalized,omitempty"`

	*LifecycleCosts
}

// costed makes Asset and the types embedding it satisfy CostedAsset.
func (a *Asset) costed() *Asset { return a }

// optimized reports whether the capacity of a is subject to optimization.
func (a *Asset) optimized() bool {
	return a.OptimizeCap != nil && *a.OptimizeCap
}

// CostedAsset is an asset whose lifecycle costs can be evaluated. It is
// implemented by Source, Sink, Converter, StorageComponent and Provider.
type CostedAsset interface {
	costed() *Asset
}

// Source is an asset in the production group.
type Source struct {
	Asset
	Dispatchable bool `json:"dispatchable"`
}

// Sink is an asset in the consumption group.
type Sink struct {
	Asset
}

// Converter is an asset in the conversion group, e.g. a transformer,
// boiler or combined heat and power plant.
type Converter struct {
	Asset
	Efficiency *Quantity `json:"efficiency,omitempty"`
}

// StorageComponent is the capacity or one of the power ratings of a storage.
type StorageComponent struct {
	Asset
	Efficiency *Quantity `json:"efficiency,omitempty"`
	SocMin     *Quantity `json:"soc_min,omitempty"`
	SocMax     *Quantity `json:"soc_max,omitempty"`
}

// Names of the components of a storage.
const (
	StorageCapacity = "storage capacity"
	InputPower      = "input power"
	OutputPower     = "output power"
)

// Storage is an asset in the storage group. It has no costs of its
// own; those are held by its components.
type Storage struct {
	Label        string `json:"label"`
	EnergyVector string `json:"energyVector,omitempty"`

	Ports

	Capacity    *StorageComponent `json:"storage capacity"`
	InputPower  *StorageComponent `json:"input power"`
	OutputPower *StorageComponent `json:"output power"`
}

// components returns the storage components in processing order.
func (s *Storage) components() []namedComponent {
	return []namedComponent{
		{StorageCapacity, s.Capacity},
		{InputPower, s.InputPower},
		{OutputPower, s.OutputPower},
	}
}

type namedComponent struct {
	name string
	c    *StorageComponent
}

// Provider is an energy provider such as a distribution system operator
// (DSO). Sources and sinks connecting the system to the provider are
// created during preprocessing.
type Provider struct {
	Asset

	EnergyPrice       *Quantity `json:"energy_price,omitempty"`
	FeedinTariff      *Quantity `json:"feedin_tariff,omitempty"`
	PeakDemandPricing *Quantity `json:"peak_demand_pricing,omitempty"`

	// PeakDemandPricingPeriod is the number of periods per year in
	// which peak demand is billed.
	PeakDemandPricingPeriod int `json:"peak_demand_pricing_period"`

	ConnectedConsumptionSources []string `json:"connected_consumption_sources,omitempty"`
	ConnectedFeedinSink         string   `json:"connected_feedin_sink,omitempty"`
}
