/*
 * Copyright 2021-2022 by Nedim Sabic Sabic
 * https://www.fibratus.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rabbitstack/toolhelp/pkg/outputs"
	"github.com/rabbitstack/toolhelp/pkg/util/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configFile     = "config-file"
	debugPrivilege = "debug-privilege"
)

// Config stores configuration options for fine-tuning the behaviour of the snapshot commands.
type Config struct {
	// Log contains log-specific configuration options
	Log log.Config `json:"logging" yaml:"logging"`
	// Output stores the format in which entries are rendered
	Output outputs.Config `json:"output" yaml:"output"`
	// Heap contains the settings that influence heap walks
	Heap HeapConfig `json:"heap" yaml:"heap"`
	// DebugPrivilege dictates if the SeDebugPrivilege is enabled in the process token
	// before snapshots of other processes are taken.
	DebugPrivilege bool `json:"debug-privilege" yaml:"debug-privilege"`

	flags *pflag.FlagSet
	viper *viper.Viper
	opts  *Options
}

// Options determines which config flags are toggled depending on the command type.
type Options struct {
	list  bool
	heaps bool
}

// Option is the type alias for the config option.
type Option func(*Options)

// WithList determines one of the commands that render snapshot entries is executed.
func WithList() Option {
	return func(o *Options) {
		o.list = true
	}
}

// WithHeaps determines the heaps command is executed.
func WithHeaps() Option {
	return func(o *Options) {
		o.list = true
		o.heaps = true
	}
}

// NewWithOpts builds a new configuration store from a variety of sources such as configuration files,
// environment variables or command line flags.
func NewWithOpts(options ...Option) *Config {
	opts := &Options{}

	for _, opt := range options {
		opt(opts)
	}

	v := viper.New()
	v.SetEnvPrefix("toolhelp")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	c := &Config{
		Log:   log.Config{},
		viper: v,
		flags: new(pflag.FlagSet),
		opts:  opts,
	}

	if opts.list {
		outputs.AddFlags(c.flags)
	}
	if opts.heaps {
		c.Heap.addFlags(c.flags)
	}
	c.addFlags()

	return c
}

// MustViperize adds the flag set to the Cobra command and binds them within the Viper flags.
func (c *Config) MustViperize(cmd *cobra.Command) {
	cmd.PersistentFlags().AddFlagSet(c.flags)
	if err := c.viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		panic(err)
	}
}

// Init setups the configuration state from Viper.
func (c *Config) Init() error {
	c.Log.InitFromViper(c.viper)
	c.DebugPrivilege = c.viper.GetBool(debugPrivilege)
	if c.opts.heaps {
		c.Heap.initFromViper(c.viper)
	}
	if c.opts.list {
		if err := c.tryLoadOutput(); err != nil {
			return err
		}
	}
	return nil
}

// TryLoadFile attempts to load the configuration file from specified path on the file system.
// A missing file at the default location is not an error, since the config file is optional.
func (c *Config) TryLoadFile(file string) error {
	if file == "" {
		return nil
	}
	if _, err := os.Stat(file); os.IsNotExist(err) && file == defaultConfigFile() {
		return nil
	}
	c.viper.SetConfigFile(file)
	return c.viper.ReadInConfig()
}

// Validate ensures that all configuration options provided by user have the expected values. It returns
// a list of validation errors prefixed with the offending configuration property/flag.
func (c *Config) Validate() error {
	file := c.File()
	if _, err := os.Stat(file); err == nil {
		out, err := readFile(file)
		if err != nil {
			return err
		}
		valid, errs := validate(schema, out)
		if !valid || len(errs) > 0 {
			return errors.Wrap(multierror.Append(nil, errs...), "invalid config")
		}
	}
	valid, errs := validate(schema, c.viper.AllSettings())
	if !valid || len(errs) > 0 {
		return errors.Wrap(multierror.Append(nil, errs...), "invalid config")
	}
	return nil
}

// File returns the config file path.
func (c *Config) File() string { return c.viper.GetString(configFile) }

func (c *Config) addFlags() {
	c.flags.String(configFile, defaultConfigFile(), "Indicates the location of the configuration file")
	c.flags.Bool(debugPrivilege, true, "Dictates if the SeDebugPrivilege is enabled in the process token")
	c.Log.AddFlags(c.flags)
}

func defaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "toolhelp", "toolhelp.yml")
}

func readFile(file string) (interface{}, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var out interface{}
	switch filepath.Ext(file) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &out)
	case ".json":
		err = json.Unmarshal(b, &out)
	default:
		return nil, errors.Errorf("%s is not a supported config file extension", filepath.Ext(file))
	}
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read the config file")
	}
	// an empty document decodes to nil
	if out == nil {
		out = map[string]interface{}{}
	}
	return out, nil
}
