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
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Knetic/govaluate"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// ReadInput reads a project description from a JSON, TOML or YAML file,
// depending on the file extension. If the description does not specify
// an input folder, the directory of the file is used.
func ReadInput(path string) (*Project, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("enprep: problem reading input file: %v", err)
	}
	raw := make(map[string]interface{})
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err = toml.Decode(string(b), &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &raw)
	default:
		err = json.Unmarshal(b, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("enprep: problem decoding input file %s: %v", path, err)
	}
	p, err := ParseProject(raw)
	if err != nil {
		return nil, err
	}
	if p.Settings.InputFolder == "" {
		p.Settings.InputFolder = filepath.Dir(path)
	}
	return p, nil
}

// parser converts loosely typed input values. Numbers may be given as
// arithmetic expressions, which can refer to the economic parameters
// project_duration, discount_factor and tax once those have been read.
type parser struct {
	params map[string]interface{}
}

// ParseProject creates a project from a decoded project description.
func ParseProject(raw map[string]interface{}) (*Project, error) {
	ps := &parser{params: make(map[string]interface{})}
	p := NewProject()

	econ, err := requiredSection(raw, "economic_data")
	if err != nil {
		return nil, err
	}
	if err := ps.economics(&p.Economics, econ); err != nil {
		return nil, err
	}

	settings, err := requiredSection(raw, "simulation_settings")
	if err != nil {
		return nil, err
	}
	if err := ps.settings(&p.Settings, settings); err != nil {
		return nil, err
	}

	if pd, ok := asMap(raw["project_data"]); ok {
		p.ProjectData = pd
	}

	for id, rec := range section(raw, EnergyProviders) {
		d, err := ps.provider(id, rec)
		if err != nil {
			return nil, groupErr(EnergyProviders, id, err)
		}
		p.Providers[id] = d
	}
	for id, rec := range section(raw, EnergyConversion) {
		a, err := ps.asset(id, rec)
		if err != nil {
			return nil, groupErr(EnergyConversion, id, err)
		}
		c := &Converter{Asset: a}
		if c.Efficiency, err = ps.quantity(rec, "efficiency"); err != nil {
			return nil, groupErr(EnergyConversion, id, err)
		}
		p.Conversion[id] = c
	}
	for id, rec := range section(raw, EnergyStorage) {
		s, err := ps.storage(id, rec)
		if err != nil {
			return nil, groupErr(EnergyStorage, id, err)
		}
		p.Storage[id] = s
	}
	for id, rec := range section(raw, EnergyProduction) {
		a, err := ps.asset(id, rec)
		if err != nil {
			return nil, groupErr(EnergyProduction, id, err)
		}
		src := &Source{Asset: a}
		if v, ok := rec["dispatchable"]; ok {
			val, _ := field(v)
			if src.Dispatchable, err = cast.ToBoolE(val); err != nil {
				return nil, groupErr(EnergyProduction, id, err)
			}
		}
		p.Production[id] = src
	}
	for id, rec := range section(raw, EnergyConsumption) {
		a, err := ps.asset(id, rec)
		if err != nil {
			return nil, groupErr(EnergyConsumption, id, err)
		}
		p.Consumption[id] = &Sink{Asset: a}
	}
	return p, nil
}

func groupErr(group, id string, err error) error {
	return fmt.Errorf("enprep: %s %s: %v", group, id, err)
}

func (ps *parser) economics(e *EconomicParameters, rec map[string]interface{}) error {
	for _, f := range []struct {
		key  string
		dst  *Param
		unit string
	}{
		{"project_duration", &e.ProjectDuration, "year"},
		{"discount_factor", &e.DiscountFactor, "factor"},
		{"tax", &e.Tax, "factor"},
	} {
		v, err := ps.requiredParam(rec, f.key, f.unit)
		if err != nil {
			return fmt.Errorf("enprep: economic_data: %v", err)
		}
		*f.dst = v
		ps.params[f.key] = v.Value
	}
	cur, _ := field(rec["currency"])
	e.Currency = cast.ToString(cur)
	return nil
}

func (ps *parser) settings(s *SimulationSettings, rec map[string]interface{}) error {
	start, _ := field(rec["start_date"])
	var err error
	if s.Start, err = cast.ToStringE(start); err != nil || s.Start == "" {
		return fmt.Errorf("enprep: simulation_settings: missing or invalid start_date")
	}
	if s.EvaluatedPeriod, err = ps.requiredParam(rec, "evaluated_period", "days"); err != nil {
		return fmt.Errorf("enprep: simulation_settings: %v", err)
	}
	if s.Timestep, err = ps.requiredParam(rec, "timestep", "minutes"); err != nil {
		return fmt.Errorf("enprep: simulation_settings: %v", err)
	}
	s.InputFolder = cast.ToString(rec["path_input_folder"])
	s.OutputFolder = cast.ToString(rec["path_output_folder"])
	return nil
}

// asset reads the fields shared by all asset types.
func (ps *parser) asset(id string, rec map[string]interface{}) (Asset, error) {
	a := Asset{
		Label:        cast.ToString(rec["label"]),
		Unit:         cast.ToString(rec["unit"]),
		EnergyVector: cast.ToString(rec["energyVector"]),
	}
	if a.Label == "" {
		a.Label = id
	}
	var err error
	if a.Ports, err = ports(rec); err != nil {
		return a, err
	}
	for _, f := range []struct {
		key string
		dst **Param
	}{
		{"installedCap", &a.InstalledCap},
		{"capex_fix", &a.CapexFix},
		{"capex_var", &a.CapexVar},
		{"opex_fix", &a.OpexFix},
		{"lifetime", &a.Lifetime},
	} {
		if *f.dst, err = ps.param(rec, f.key); err != nil {
			return a, err
		}
	}
	if a.OpexVar, err = ps.quantity(rec, "opex_var"); err != nil {
		return a, err
	}
	if v, ok := rec["optimizeCap"]; ok {
		val, _ := field(v)
		b, err := cast.ToBoolE(val)
		if err != nil {
			return a, fmt.Errorf("optimizeCap: %v", err)
		}
		a.OptimizeCap = &b
	}
	if v, ok := rec["maximumCap"]; ok {
		// A ceiling may be given as a unit without a value.
		val, unit := v, ""
		if m, ok := asMap(v); ok {
			val, unit = m["value"], cast.ToString(m["unit"])
		}
		a.MaximumCap = &MaxCap{Unit: unit}
		if val != nil {
			f, err := ps.number(val)
			if err != nil {
				return a, fmt.Errorf("maximumCap: %v", err)
			}
			a.MaximumCap.Value = &f
		}
	}
	if m, ok := asMap(rec["input"]); ok {
		a.Input = &InputRef{
			FileName: cast.ToString(m["file_name"]),
			Header:   cast.ToString(m["header"]),
			Unit:     cast.ToString(m["unit"]),
		}
	} else if fn := cast.ToString(rec["file_name"]); fn != "" {
		unit := a.Unit
		if unit == "" {
			unit = "?"
		}
		a.Input = &InputRef{FileName: fn, Unit: unit + "/h"}
	}
	return a, nil
}

func ports(rec map[string]interface{}) (Ports, error) {
	var pt Ports
	for _, f := range []struct {
		key string
		dst *Carriers
	}{
		{"inflow_direction", &pt.InflowDirection},
		{"outflow_direction", &pt.OutflowDirection},
		{"input_bus_name", &pt.InputBusName},
		{"output_bus_name", &pt.OutputBusName},
	} {
		v, ok := rec[f.key]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			*f.dst = Carriers{s}
			continue
		}
		l, err := cast.ToStringSliceE(v)
		if err != nil {
			return pt, fmt.Errorf("%s: %v", f.key, err)
		}
		*f.dst = Carriers(l)
	}
	return pt, nil
}

func (ps *parser) provider(id string, rec map[string]interface{}) (*Provider, error) {
	a, err := ps.asset(id, rec)
	if err != nil {
		return nil, err
	}
	d := &Provider{Asset: a, PeakDemandPricingPeriod: 1}
	if d.EnergyPrice, err = ps.quantity(rec, "energy_price"); err != nil {
		return nil, err
	}
	if d.FeedinTariff, err = ps.quantity(rec, "feedin_tariff"); err != nil {
		return nil, err
	}
	if d.PeakDemandPricing, err = ps.quantity(rec, "peak_demand_pricing"); err != nil {
		return nil, err
	}
	if v, ok := rec["peak_demand_pricing_period"]; ok {
		val, _ := field(v)
		f, err := ps.number(val)
		if err != nil {
			return nil, fmt.Errorf("peak_demand_pricing_period: %v", err)
		}
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("peak_demand_pricing_period: %g is not a whole number", f)
		}
		d.PeakDemandPricingPeriod = int(f)
	}
	return d, nil
}

func (ps *parser) storage(id string, rec map[string]interface{}) (*Storage, error) {
	s := &Storage{
		Label:        cast.ToString(rec["label"]),
		EnergyVector: cast.ToString(rec["energyVector"]),
	}
	if s.Label == "" {
		s.Label = id
	}
	var err error
	if s.Ports, err = ports(rec); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		name string
		dst  **StorageComponent
	}{
		{StorageCapacity, &s.Capacity},
		{InputPower, &s.InputPower},
		{OutputPower, &s.OutputPower},
	} {
		m, ok := asMap(rec[f.name])
		if !ok {
			return nil, fmt.Errorf("missing %s", f.name)
		}
		a, err := ps.asset(s.Label+" "+f.name, m)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", f.name, err)
		}
		c := &StorageComponent{Asset: a}
		if c.Efficiency, err = ps.quantity(m, "efficiency"); err != nil {
			return nil, fmt.Errorf("%s: %v", f.name, err)
		}
		if c.SocMin, err = ps.quantity(m, "soc_min"); err != nil {
			return nil, fmt.Errorf("%s: %v", f.name, err)
		}
		if c.SocMax, err = ps.quantity(m, "soc_max"); err != nil {
			return nil, fmt.Errorf("%s: %v", f.name, err)
		}
		*f.dst = c
	}
	return s, nil
}

// param reads a number with a unit. It returns nil if key is absent.
func (ps *parser) param(rec map[string]interface{}, key string) (*Param, error) {
	raw, ok := rec[key]
	if !ok {
		return nil, nil
	}
	v, unit := field(raw)
	f, err := ps.number(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", key, err)
	}
	return &Param{Value: f, Unit: unit}, nil
}

// requiredParam is like param but fails if key is absent. defaultUnit
// is used if no unit is given.
func (ps *parser) requiredParam(rec map[string]interface{}, key, defaultUnit string) (Param, error) {
	p, err := ps.param(rec, key)
	if err != nil {
		return Param{}, err
	}
	if p == nil {
		return Param{}, fmt.Errorf("missing %s", key)
	}
	if p.Unit == "" {
		p.Unit = defaultUnit
	}
	return *p, nil
}

// quantity reads a value with a unit. It returns nil if key is absent.
func (ps *parser) quantity(rec map[string]interface{}, key string) (*Quantity, error) {
	raw, ok := rec[key]
	if !ok {
		return nil, nil
	}
	v, unit := field(raw)
	val, err := ps.value(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", key, err)
	}
	return &Quantity{Value: val, Unit: unit}, nil
}

// value converts v to a Scalar, a FileRef or a MultiBus.
func (ps *parser) value(v interface{}) (Value, error) {
	if m, ok := asMap(v); ok {
		return fileRef(m)
	}
	if _, isString := v.(string); !isString {
		if l, err := cast.ToSliceE(v); err == nil {
			mb := make(MultiBus, len(l))
			for i, e := range l {
				if m, ok := asMap(e); ok {
					ref, err := fileRef(m)
					if err != nil {
						return nil, err
					}
					mb[i] = ref
					continue
				}
				f, err := ps.number(e)
				if err != nil {
					return nil, fmt.Errorf("entry %d: %v", i, err)
				}
				mb[i] = Scalar(f)
			}
			return mb, nil
		}
	}
	f, err := ps.number(v)
	if err != nil {
		return nil, err
	}
	return Scalar(f), nil
}

func fileRef(m map[string]interface{}) (FileRef, error) {
	ref := FileRef{
		FileName: cast.ToString(m["file_name"]),
		Header:   cast.ToString(m["header"]),
	}
	if ref.FileName == "" {
		return ref, fmt.Errorf("timeseries reference without file_name")
	}
	return ref, nil
}

// number converts v to a float. Strings that are not numbers are
// evaluated as arithmetic expressions.
func (ps *parser) number(v interface{}) (float64, error) {
	s, ok := v.(string)
	if !ok {
		return cast.ToFloat64E(v)
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f, nil
	}
	expr, err := govaluate.NewEvaluableExpression(s)
	if err != nil {
		return 0, fmt.Errorf("invalid expression %q: %v", s, err)
	}
	result, err := expr.Evaluate(ps.params)
	if err != nil {
		return 0, fmt.Errorf("evaluating %q: %v", s, err)
	}
	f, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("expression %q is not numeric", s)
	}
	return f, nil
}

// field splits a {"value": v, "unit": u} record. Values that are not
// in this form are returned as they are, without a unit.
func field(raw interface{}) (interface{}, string) {
	if m, ok := asMap(raw); ok {
		if v, ok := m["value"]; ok {
			return v, cast.ToString(m["unit"])
		}
	}
	return raw, ""
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		m, err := cast.ToStringMapE(t)
		return m, err == nil
	}
	return nil, false
}

func requiredSection(raw map[string]interface{}, key string) (map[string]interface{}, error) {
	m, ok := asMap(raw[key])
	if !ok {
		return nil, fmt.Errorf("enprep: input has no %s", key)
	}
	return m, nil
}

// section returns the records in the named group, skipping entries that
// are not records.
func section(raw map[string]interface{}, key string) map[string]map[string]interface{} {
	o := make(map[string]map[string]interface{})
	m, ok := asMap(raw[key])
	if !ok {
		return o
	}
	for id, v := range m {
		if rec, ok := asMap(v); ok {
			o[id] = rec
		}
	}
	return o
}
