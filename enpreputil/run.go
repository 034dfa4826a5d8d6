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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/enprep"
	"github.com/spatialmodel/enprep/cloud"
	"github.com/spf13/cobra"
)

// InputsDir is the directory within the output folder where copies of the
// timeseries files that were read are kept.
const InputsDir = "inputs"

// PlotsDir is the directory within the output folder where input plots
// are saved.
const PlotsDir = "plots"

// Run preprocesses the project described in the input file and writes the
// processed project to outputFolder.
//
// If logFile is empty, the log is written to enprep.log in the output folder.
// If inputFolder is empty, timeseries files are looked for relative to the
// directory of the input file. outputFolder may be a local directory or a
// blob storage URL (gs:// or s3://). plotInputs specifies whether a figure
// should be saved for every timeseries that is read.
func Run(cmd *cobra.Command, logFile, input, inputFolder, outputFolder, logLevel string, plotInputs bool) error {
	startTime := time.Now()
	ctx := context.Background()

	var upload uploader
	localOut := upload.maybeUpload(outputFolder)
	if upload.err != nil {
		return fmt.Errorf("enprep: creating staging directory: %v", upload.err)
	}
	if err := os.MkdirAll(localOut, os.ModePerm); err != nil {
		return fmt.Errorf("enprep: creating output folder: %v", err)
	}

	logFile = checkLogFile(logFile, localOut)
	if err := os.MkdirAll(filepath.Dir(logFile), os.ModePerm); err != nil {
		return fmt.Errorf("enprep: creating log directory: %v", err)
	}
	logfile, err := os.Create(logFile)
	if err != nil {
		return fmt.Errorf("enprep: problem creating log file: %v", err)
	}
	defer logfile.Close()

	level, err := checkLogLevel(logLevel)
	if err != nil {
		return err
	}
	logger := logrus.New()
	logger.Out = io.MultiWriter(cmd.OutOrStdout(), logfile)
	logger.Level = level

	p, err := enprep.ReadInput(input)
	if err != nil {
		return err
	}
	p.RunID = uuid.New().String()
	log := logger.WithField("run", p.RunID)
	if inputFolder != "" {
		p.Settings.InputFolder = os.ExpandEnv(inputFolder)
	}
	p.Settings.OutputFolder = outputFolder
	log.Infof("EnPrep v%s: preprocessing %s", enprep.Version, input)

	ing := enprep.NewIngestor(p.Settings.InputFolder, log)
	a, err := cloud.NewArchive(ctx, filepath.Join(localOut, InputsDir, enprep.TimeseriesDir), log)
	if err != nil {
		return err
	}
	ing.Archiver = a
	if plotInputs {
		ing.Plotter = enprep.InputPlotter{Dir: filepath.Join(localOut, PlotsDir)}
	}

	stages := append(enprep.DefaultStages(ing),
		enprep.SaveProcessed(localOut),
		upload.uploadOutput(ctx),
	)
	pp, err := enprep.NewPreprocessor(stages...)
	if err != nil {
		return err
	}
	if err := pp.Run(p); err != nil {
		if enprep.IsFatal(err) {
			log.WithField("severity", "critical").Error(err)
		}
		return err
	}
	log.Infof("Preprocessing finished in %v; output written to %s",
		time.Since(startTime).Round(time.Millisecond), outputFolder)
	return nil
}
