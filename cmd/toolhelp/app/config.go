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
	"fmt"
	"os"

	"github.com/rabbitstack/toolhelp/cmd/toolhelp/common"
	"github.com/rabbitstack/toolhelp/pkg/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  printConfig,
}

var cfg = config.NewWithOpts(config.WithHeaps())

func init() {
	cfg.MustViperize(configCmd)
}

func printConfig(cmd *cobra.Command, args []string) error {
	if err := common.Init(cfg); err != nil {
		return err
	}
	_, err := fmt.Fprintln(os.Stdout, cfg.Print())
	return err
}
