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

package outputs

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

const (
	format   = "output.format"
	tmpl     = "output.template"
	humanize = "output.humanize"
)

// Format is the alias for the output format.
type Format uint8

const (
	// Table renders entries as a table with one row per entry.
	Table Format = iota
	// JSON renders entries as a JSON array.
	JSON
	// YAML renders entries as a YAML sequence.
	YAML
	// Template renders each entry through a user supplied template.
	Template
	// Unknown is an undefined output format.
	Unknown
)

// String returns the string representation of the output format.
func (f Format) String() string {
	switch f {
	case Table:
		return "table"
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case Template:
		return "template"
	default:
		return "unknown"
	}
}

// MarshalText encodes the format by its name.
func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// FormatFromString parses the output format from input string.
func FormatFromString(s string) Format {
	switch strings.ToLower(s) {
	case "", "table":
		return Table
	case "json":
		return JSON
	case "yaml", "yml":
		return YAML
	case "template":
		return Template
	default:
		return Unknown
	}
}

// ErrMissingTemplate is returned when the template format is selected without a template.
var ErrMissingTemplate = errors.New("template output requires a template")

// Config contains the tweaks that influence how snapshot entries are rendered.
type Config struct {
	// Format is one of table|json|yaml|template.
	Format Format `mapstructure:"format" json:"format" yaml:"format"`
	// Template is the Go template applied to every entry in template format.
	Template string `mapstructure:"template" json:"template" yaml:"template"`
	// Humanize prints sizes in human readable units.
	Humanize bool `mapstructure:"humanize" json:"humanize" yaml:"humanize"`
}

// Type returns the output format.
func (c Config) Type() Format { return c.Format }

// AddFlags registers persistent flags.
func AddFlags(flags *pflag.FlagSet) {
	flags.StringP(format, "o", Table.String(), "Specifies the output format. Choose between table|json|yaml|template")
	flags.String(tmpl, "", "Entry formatting template used in template output format")
	flags.Bool(humanize, false, "Indicates whether sizes are printed in human readable units")
}
