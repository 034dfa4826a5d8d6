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
	"io"
	"os"
	"path/filepath"
)

// ProcessedFile is the name of the file that SaveProcessed writes.
const ProcessedFile = "json_input_processed.json"

// WriteProcessed returns a stage that writes the processed project to w
// as indented JSON.
func WriteProcessed(w io.Writer) Stage {
	return Stage{
		Name:     "write processed input",
		Requires: []Product{CostedAssets},
		Provides: []Product{ProcessedOutput},
		Run: func(p *Project) error {
			e := json.NewEncoder(w)
			e.SetIndent("", "    ")
			if err := e.Encode(p); err != nil {
				return fmt.Errorf("enprep: writing processed input: %v", err)
			}
			return nil
		},
	}
}

// SaveProcessed returns a stage that writes the processed project to
// ProcessedFile in dir, creating dir if necessary.
func SaveProcessed(dir string) Stage {
	s := WriteProcessed(nil)
	s.Run = func(p *Project) error {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("enprep: creating output directory: %v", err)
		}
		f, err := os.Create(filepath.Join(dir, ProcessedFile))
		if err != nil {
			return fmt.Errorf("enprep: creating processed input file: %v", err)
		}
		if err := WriteProcessed(f).Run(p); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return s
}
