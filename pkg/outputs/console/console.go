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

package console

import (
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
	"github.com/rabbitstack/toolhelp/pkg/outputs"
	"gopkg.in/yaml.v3"
)

var consoleErrors = expvar.NewInt("output.console.errors")

// Column describes how a single field of the entry is rendered in table format.
type Column[T any] struct {
	// Name is the column header.
	Name string
	// Value extracts the cell value from the entry.
	Value func(T) any
	// Align right-aligns the column. Numeric columns usually set it.
	Align bool
}

// Render writes the entries in the format dictated by the output config. The table format
// consults the columns, while structured formats serialize the entries as they are.
func Render[T any](w io.Writer, c outputs.Config, columns []Column[T], rows []T) error {
	var err error
	switch c.Type() {
	case outputs.Table:
		err = renderTable(w, columns, rows)
	case outputs.JSON:
		err = renderJSON(w, rows)
	case outputs.YAML:
		err = renderYAML(w, rows)
	case outputs.Template:
		err = renderTemplate(w, c.Template, rows)
	default:
		err = errors.Errorf("%s is not a known output format", c.Format)
	}
	if err != nil {
		consoleErrors.Add(1)
	}
	return err
}

func renderTable[T any](w io.Writer, columns []Column[T], rows []T) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, col := range columns {
		header[i] = col.Name
		if col.Align {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight, AlignHeader: text.AlignRight})
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i, col := range columns {
			r[i] = col.Value(row)
		}
		t.AppendRow(r)
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d entries", len(rows))})
	t.Render()
	return nil
}

func renderJSON[T any](w io.Writer, rows []T) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func renderYAML[T any](w io.Writer, rows []T) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rows); err != nil {
		return err
	}
	return enc.Close()
}

func renderTemplate[T any](w io.Writer, text string, rows []T) error {
	if text == "" {
		return outputs.ErrMissingTemplate
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	tmpl, err := template.New("entry").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return errors.Wrap(err, "invalid output template")
	}
	for _, row := range rows {
		if err := tmpl.Execute(w, row); err != nil {
			return err
		}
	}
	return nil
}
