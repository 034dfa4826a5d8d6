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
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ctessum/requestcache"
	"github.com/tealeg/xlsx"
)

// table holds the contents of a timeseries file: a header row followed
// by data rows.
type table struct {
	header []string
	rows   [][]string
}

// newTableCache returns a cache that loads each timeseries file from disk
// only once.
func newTableCache() *requestcache.Cache {
	return requestcache.NewCache(func(ctx context.Context, req interface{}) (interface{}, error) {
		return readTable(req.(string))
	}, 1, requestcache.Memory(100))
}

// loadTable returns the table in the given file, using cache to avoid
// loading the same file more than once.
func loadTable(cache *requestcache.Cache, path string) (*table, error) {
	r := cache.NewRequest(context.Background(), path, path)
	t, err := r.Result()
	if err != nil {
		return nil, err
	}
	return t.(*table), nil
}

// readTable reads a comma-separated or Microsoft Excel file, depending on
// the file extension.
func readTable(path string) (*table, error) {
	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		records, err = readXLSX(path)
	default:
		records, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("enprep: timeseries file %s is empty", path)
	}
	return &table{header: records[0], rows: records[1:]}, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("enprep: opening timeseries file: %v", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("enprep: reading timeseries file %s: %v", path, err)
	}
	return records, nil
}

// readXLSX reads the first sheet of an Excel file. Trailing rows without
// any content are dropped.
func readXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("enprep: opening xlsx file: %v", err)
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("enprep: xlsx file %s has no sheets", path)
	}
	var records [][]string
	for _, row := range f.Sheets[0].Rows {
		if row == nil {
			records = append(records, nil)
			continue
		}
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			if c != nil {
				cells[i] = strings.TrimSpace(c.Value)
			}
		}
		records = append(records, cells)
	}
	for len(records) > 0 && blank(records[len(records)-1]) {
		records = records[:len(records)-1]
	}
	return records, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// columnIndex returns the index of the column with the given header.
// An empty header selects the first column.
func (t *table) columnIndex(header string) (int, error) {
	if header == "" {
		return 0, nil
	}
	for i, h := range t.header {
		if strings.TrimSpace(h) == header {
			return i, nil
		}
	}
	return -1, fmt.Errorf("enprep: no column %q; available columns are %v", header, t.header)
}

// column returns the first n values of the column at index i.
func (t *table) column(i, n int) (Series, error) {
	o := make(Series, n)
	for j := 0; j < n; j++ {
		row := t.rows[j]
		if i >= len(row) {
			return nil, fmt.Errorf("enprep: row %d has no column %d", j+2, i+1)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("enprep: row %d: %v", j+2, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("enprep: row %d: value %q is not finite", j+2, row[i])
		}
		o[j] = v
	}
	return o, nil
}
