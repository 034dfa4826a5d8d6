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

	"github.com/lnashier/viper"
	"github.com/spatialmodel/enprep"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to EnPrep.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Input",
			usage: `
              Input is the path to the project description file. JSON, TOML,
              and YAML files are accepted, distinguished by their extension.
              It can contain environment variables.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "InputFolder",
			usage: `
              InputFolder is the directory holding the time_series directory
              that timeseries file names are relative to. If it is empty, the
              path_input_folder simulation setting is used, and if that is also
              empty the directory of the Input file is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFolder",
			usage: `
              OutputFolder is the directory where the processed project, the
              log file, copies of the input timeseries, and any plots are
              written. It can be a local directory or a location in cloud
              blob storage, for example gs://bucket/path or s3://bucket/path.
              It can contain environment variables.`,
			shorthand:  "o",
			defaultVal: "output",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can
              include environment variables. If LogFile is left blank,
              the logfile will be saved as enprep.log in OutputFolder.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum severity of the messages written to the
              log. Valid values are debug, info, warning, and error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "PlotInputs",
			usage: `
              PlotInputs specifies whether a figure should be saved in
              OutputFolder for every input timeseries.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Overwrite",
			usage: `
              Overwrite specifies whether output may be written to a local
              OutputFolder that already contains files.`,
			shorthand:  "f",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("ENPREP")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("enprep: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "enprep",
	Short: "A preprocessor for energy system optimization models.",
	Long: `EnPrep turns a description of an energy system (assets, prices, timeseries,
and economic assumptions) into a connected and cost-annotated asset graph that
can be passed to a dispatch optimizer.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'ENPREP_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of EnPrep.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("EnPrep v%s\n", enprep.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Preprocess a project.",
	Long: `run reads the project description in the Input file, fills in missing
values, connects the assets to energy busses, calculates lifetime costs, and
writes the result to OutputFolder.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := checkInput(Cfg.GetString("Input"))
		if err != nil {
			return err
		}
		outputFolder, err := checkOutputFolder(Cfg.GetString("OutputFolder"),
			cast.ToBool(Cfg.Get("Overwrite")))
		if err != nil {
			return err
		}
		return Run(
			cmd,
			Cfg.GetString("LogFile"),
			input,
			Cfg.GetString("InputFolder"),
			outputFolder,
			Cfg.GetString("LogLevel"),
			cast.ToBool(Cfg.Get("PlotInputs")),
		)
	},
	DisableAutoGenTag: true,
}
