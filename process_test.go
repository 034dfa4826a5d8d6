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
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
)

// preprocess runs the default stages followed by extra on the test project.
func preprocess(t *testing.T, ing *Ingestor, extra ...Stage) *Project {
	p, err := ReadInput("testdata/project.json")
	if err != nil {
		t.Fatal(err)
	}
	ing.InputFolder = p.Settings.InputFolder
	pp, err := NewPreprocessor(append(DefaultStages(ing), extra...)...)
	if err != nil {
		t.Fatal(err)
	}
	if err := pp.Run(p); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPreprocess(t *testing.T) {
	ing, _, cleanup := newTestIngestor(t)
	defer cleanup()
	archive := make(countingArchiver)
	ing.Archiver = archive
	p := preprocess(t, ing)

	if want := map[string]string{"Electricity": "Electricity"}; !reflect.DeepEqual(p.Sectors, want) {
		t.Errorf("sectors: %v", p.Sectors)
	}
	wantBusses := map[string]Bus{
		"Electricity bus": {
			"DSO_consumption":    "DSO_consumption source",
			"DSO_feedin":         "DSO_feedin_sink",
			"Electricity excess": "Electricity excess_sink",
			"inverter":           "PV inverter",
			"battery":            "Battery",
			"demand":             "Demand",
		},
		"Electricity_DC bus": {
			"inverter": "PV inverter",
			"pv":       "PV plant",
		},
	}
	if !reflect.DeepEqual(p.Busses, wantBusses) {
		t.Errorf("busses:\nhave %v\nwant %v", p.Busses, wantBusses)
	}

	pv := p.Production["pv"]
	if peak := pv.TimeseriesNormalized.Peak(); different(peak, 1, testTolerance) {
		t.Errorf("pv normalized peak %g", peak)
	}
	if !reflect.DeepEqual(pv.OutputBusName, Carriers{"Electricity_DC bus"}) {
		t.Errorf("pv output bus %v", pv.OutputBusName)
	}
	if pv.MaximumCap == nil || pv.MaximumCap.Value != nil {
		t.Errorf("pv maximum capacity %+v", pv.MaximumCap)
	}

	demand := p.Consumption["demand"]
	if different(demand.TimeseriesTotal.Value, 48, 1.e-6) {
		t.Errorf("demand total %g", demand.TimeseriesTotal.Value)
	}
	if demand.TimeseriesNormalized != nil {
		t.Error("demand should not be normalized")
	}

	feedin := p.Consumption["DSO_feedin"]
	s, ok := feedin.OpexVar.Value.(Series)
	if !ok || len(s) != 24 || s[0] != -0.05 || s[12] != -0.1 {
		t.Errorf("feedin price %v", feedin.OpexVar.Value)
	}
	if want := []FileRef{{FileName: "prices.csv", Header: "feedin"}}; !reflect.DeepEqual(feedin.OpexVar.ValueInfo, want) {
		t.Errorf("feedin value info %v", feedin.OpexVar.ValueInfo)
	}
	if p.Providers["DSO"].ConnectedFeedinSink != "DSO_feedin" {
		t.Errorf("connected feedin sink %q", p.Providers["DSO"].ConnectedFeedinSink)
	}

	b := p.Storage["battery"]
	if !reflect.DeepEqual(b.InputBusName, Carriers{"Electricity bus"}) {
		t.Errorf("battery input bus %v", b.InputBusName)
	}
	if b.Capacity.LifecycleCosts == nil || b.Capacity.LifecycleCosts.LifetimeCapexVar.Value <= 300 {
		t.Errorf("battery capacity costs %+v", b.Capacity.LifecycleCosts)
	}

	var assets []CostedAsset
	for _, a := range p.Providers {
		assets = append(assets, a)
	}
	for _, a := range p.Conversion {
		assets = append(assets, a)
	}
	for _, s := range p.Storage {
		for _, c := range s.components() {
			assets = append(assets, c.c)
		}
	}
	for _, a := range p.Production {
		assets = append(assets, a)
	}
	for _, a := range p.Consumption {
		assets = append(assets, a)
	}
	for _, a := range assets {
		if a.costed().LifecycleCosts == nil {
			t.Errorf("%s has no lifecycle costs", a.costed().Label)
		}
	}

	for file, n := range archive {
		if n != 1 {
			t.Errorf("%s archived %d times", file, n)
		}
	}
	if len(archive) != 3 {
		t.Errorf("archived %v", archive)
	}
}

func TestPreprocessFatal(t *testing.T) {
	ing, hook, cleanup := newTestIngestor(t)
	defer cleanup()
	p, err := ReadInput("testdata/project.json")
	if err != nil {
		t.Fatal(err)
	}
	p.Settings.EvaluatedPeriod.Value = 2
	pp, err := NewPreprocessor(DefaultStages(ing)...)
	if err != nil {
		t.Fatal(err)
	}
	ing.InputFolder = p.Settings.InputFolder
	err = pp.Run(p)
	if !IsFatal(err) {
		t.Fatalf("have error %v", err)
	}
	if n := countEntries(hook, logrus.ErrorLevel, "shorter than the evaluated period"); n != 1 {
		t.Errorf("have %d critical messages", n)
	}
}

func TestWriteProcessed(t *testing.T) {
	ing, _, cleanup := newTestIngestor(t)
	defer cleanup()
	buf := new(bytes.Buffer)
	preprocess(t, ing, WriteProcessed(buf))

	var out map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{
		"simulation_settings", "economic_data", "project_data", "energyBusses",
		EnergyProviders, EnergyConversion, EnergyStorage, EnergyProduction, EnergyConsumption,
	} {
		if _, ok := out[key]; !ok {
			t.Errorf("missing %s", key)
		}
	}
	settings := out["simulation_settings"].(map[string]interface{})
	if n := len(settings["time_index"].([]interface{})); n != 24 {
		t.Errorf("time index has %d entries", n)
	}
	pv := out[EnergyProduction].(map[string]interface{})["pv"].(map[string]interface{})
	for _, key := range []string{
		"label", "outflow_direction", "output_bus_name", "timeseries", "timeseries_normalized",
		"lifetime_capex_var", "annuity_capex_opex_var", "simulation_annuity", "maximumCap",
	} {
		if _, ok := pv[key]; !ok {
			t.Errorf("pv has no %s", key)
		}
	}
	if pv["output_bus_name"] != "Electricity_DC bus" {
		t.Errorf("single bus names should be written as strings: %v", pv["output_bus_name"])
	}
	feedin := out[EnergyConsumption].(map[string]interface{})["DSO_feedin"].(map[string]interface{})
	opexVar := feedin["opex_var"].(map[string]interface{})
	if _, ok := opexVar["value_info"]; !ok {
		t.Error("feedin price has no value_info")
	}
	battery := out[EnergyStorage].(map[string]interface{})["battery"].(map[string]interface{})
	for _, key := range []string{StorageCapacity, InputPower, OutputPower} {
		if _, ok := battery[key]; !ok {
			t.Errorf("battery has no %s", key)
		}
	}
}

func TestSaveProcessedWithPlots(t *testing.T) {
	ing, _, cleanup := newTestIngestor(t)
	defer cleanup()
	dir, err := ioutil.TempDir("", "enprep_out")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	ing.Plotter = InputPlotter{Dir: filepath.Join(dir, "plots")}
	p := preprocess(t, ing, SaveProcessed(dir))

	if _, err := os.Stat(filepath.Join(dir, ProcessedFile)); err != nil {
		t.Error(err)
	}
	if len(p.Plots.Demands) != 1 {
		t.Errorf("demand plots %v", p.Plots.Demands)
	}
	if len(p.Plots.Resources) != 2 {
		t.Errorf("resource plots %v", p.Plots.Resources)
	}
	for _, f := range append(p.Plots.Demands, p.Plots.Resources...) {
		if _, err := os.Stat(f); err != nil {
			t.Error(err)
		}
	}
}
