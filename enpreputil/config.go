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

package enpreputil

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/enprep/cloud"
)

// checkInput makes sure that the input file is specified and exists, and
// expands any environment variables.
func checkInput(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an input file configuration variable (for example: Input="project.json")`)
	}
	f = os.ExpandEnv(f)
	if _, err := os.Stat(f); err != nil {
		return f, fmt.Errorf("enprep: the input file doesn't exist: %v", err)
	}
	return f, nil
}

// checkOutputFolder makes sure that the output folder is specified and,
// unless overwrite is true, that a local output folder does not already
// contain files.
func checkOutputFolder(dir string, overwrite bool) (string, error) {
	if dir == "" {
		return "", fmt.Errorf(`you need to specify an output folder configuration variable (for example: OutputFolder="output")`)
	}
	dir = os.ExpandEnv(dir)
	if cloud.IsBlob(dir) || overwrite {
		return dir, nil
	}
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return dir, nil
		}
		return dir, fmt.Errorf("enprep: checking OutputFolder: %v", err)
	}
	if len(files) > 0 {
		return dir, fmt.Errorf("enprep: the OutputFolder %s is not empty; set Overwrite to replace its contents", dir)
	}
	return dir, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFolder string) string {
	if logFile == "" {
		return filepath.Join(outputFolder, "enprep.log")
	}
	return os.ExpandEnv(logFile)
}

// checkLogLevel converts a log level name into a logrus level.
func checkLogLevel(level string) (logrus.Level, error) {
	l, err := logrus.ParseLevel(strings.ToLower(os.ExpandEnv(level)))
	if err != nil {
		return l, fmt.Errorf("enprep: invalid LogLevel: %v", err)
	}
	return l, nil
}
