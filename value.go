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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Value is a parameter value. It is one of Scalar, FileRef, Series or
// MultiBus. FileRef values are replaced by Series when timeseries are
// ingested, so after preprocessing only Scalar, Series and MultiBus remain.
type Value interface {
	isValue()
}

// Scalar is a single number.
type Scalar float64

// FileRef refers to a column of a timeseries file.
type FileRef struct {
	FileName string `json:"file_name"`
	Header   string `json:"header"`
}

// Series is a timeseries aligned to the simulation time index.
type Series []float64

// MultiBus holds one value per bus attached to an asset. Each entry is
// a Scalar, FileRef or Series.
type MultiBus []Value

func (Scalar) isValue()   {}
func (FileRef) isValue()  {}
func (Series) isValue()   {}
func (MultiBus) isValue() {}

// Peak returns the largest value of s, or 0 if s is empty.
func (s Series) Peak() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Max(s)
}

// Total returns the sum of s.
func (s Series) Total() float64 { return floats.Sum(s) }

// Mean returns the average of s, or 0 if s is empty.
func (s Series) Mean() float64 {
	if len(s) == 0 {
		return 0
	}
	return stat.Mean(s, nil)
}

// Scaled returns a copy of s multiplied by c.
func (s Series) Scaled(c float64) Series {
	o := make(Series, len(s))
	copy(o, s)
	floats.Scale(c, o)
	return o
}

// Quantity is a possibly time-varying value together with its unit.
type Quantity struct {
	Value Value  `json:"value"`
	Unit  string `json:"unit"`

	// ValueInfo holds the file references that Value was read from.
	ValueInfo []FileRef `json:"value_info,omitempty"`
}

// Param is a number together with its unit.
type Param struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// MaxCap is a capacity ceiling. A nil Value means that there is no ceiling.
type MaxCap struct {
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`
}

// Carriers holds the names of one or more energy carriers or busses.
// A single name is written as a string and several names as a list.
type Carriers []string

// MarshalJSON implements json.Marshaler.
func (c Carriers) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}

// negate returns v with its sign flipped. FileRef values are returned as-is.
func negate(v Value) Value {
	switch t := v.(type) {
	case Scalar:
		return -t
	case Series:
		return t.Scaled(-1)
	case MultiBus:
		o := make(MultiBus, len(t))
		for i, e := range t {
			o[i] = negate(e)
		}
		return o
	default:
		return v
	}
}

// meanOf returns the value of a scalar or the mean of a series.
func meanOf(v Value) (float64, bool) {
	switch t := v.(type) {
	case Scalar:
		return float64(t), true
	case Series:
		return t.Mean(), true
	default:
		return 0, false
	}
}
