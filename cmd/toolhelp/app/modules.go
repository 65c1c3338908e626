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

package app

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/rabbitstack/toolhelp/cmd/toolhelp/common"
	"github.com/rabbitstack/toolhelp/pkg/config"
	"github.com/rabbitstack/toolhelp/pkg/outputs/console"
	"github.com/rabbitstack/toolhelp/pkg/pe"
	"github.com/rabbitstack/toolhelp/pkg/toolhelp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var modulesCmd = &cobra.Command{
	Use:   "modules [pid]",
	Short: "List the modules loaded by a process. Defaults to the current process",
	Args:  cobra.MaximumNArgs(1),
	RunE:  listModules,
}

var (
	modulesConfig = config.NewWithOpts(config.WithList())
	modulesImage  bool
)

// module is the module entry optionally enriched with its image headers.
type module struct {
	toolhelp.ModuleEntry `yaml:",inline"`
	Image                *pe.Image `json:"image,omitempty" yaml:"image,omitempty"`
}

func moduleColumns(human, image bool) []console.Column[module] {
	cols := []console.Column[module]{
		{Name: "Base", Value: func(m module) any { return hexAddr(uint64(m.BaseAddr)) }, Align: true},
		{Name: "Size", Value: func(m module) any { return humanSize(uint64(m.BaseSize), human) }, Align: true},
		{Name: "Name", Value: func(m module) any { return m.Name }},
	}
	if image {
		cols = append(cols,
			console.Column[module]{Name: "Machine", Value: func(m module) any { return imageField(m, func(i *pe.Image) any { return i.Machine }) }},
			console.Column[module]{Name: "Subsystem", Value: func(m module) any { return imageField(m, func(i *pe.Image) any { return i.Subsystem }) }},
			console.Column[module]{Name: "Linked", Value: func(m module) any {
				return imageField(m, func(i *pe.Image) any { return humanize.Time(i.LinkTime) })
			}},
		)
	}
	return append(cols, console.Column[module]{Name: "Path", Value: func(m module) any { return m.ExePath }})
}

func imageField(m module, fn func(*pe.Image) any) any {
	if m.Image == nil {
		return "-"
	}
	return fn(m.Image)
}

func init() {
	modulesConfig.MustViperize(modulesCmd)
	modulesCmd.Flags().BoolVar(&modulesImage, "image", false, "Parses the in-memory image headers of every module")
}

func listModules(cmd *cobra.Command, args []string) error {
	pid, err := parsePID(args)
	if err != nil {
		return err
	}
	if err := common.Init(modulesConfig); err != nil {
		return err
	}
	snap, err := toolhelp.NewModuleSnapshot(pid)
	if err != nil {
		return err
	}
	mods := make([]module, 0)
	for entry := range snap.All() {
		m := module{ModuleEntry: entry}
		if modulesImage {
			img, err := pe.ParseModule(entry)
			if err != nil {
				log.Warnf("unable to parse %s image headers: %v", entry.Name, err)
			}
			m.Image = img
		}
		mods = append(mods, m)
	}
	if pid == 0 {
		pid = uint32(os.Getpid())
	}
	summarize(snap.Kind(), len(mods), pid)
	if err := console.Render(os.Stdout, modulesConfig.Output, moduleColumns(modulesConfig.Output.Humanize, modulesImage), mods); err != nil {
		return err
	}
	return snap.Err()
}
