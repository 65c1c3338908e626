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
	"encoding/hex"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/rabbitstack/toolhelp/cmd/toolhelp/common"
	"github.com/rabbitstack/toolhelp/pkg/config"
	"github.com/rabbitstack/toolhelp/pkg/toolhelp"
	"github.com/spf13/cobra"
)

// maxReadSize caps the number of bytes dumped by a single read
const maxReadSize = 16 * 1024 * 1024

var readCmd = &cobra.Command{
	Use:   "read <pid> <addr> <size>",
	Short: "Dump the memory of a process at the given address",
	Args:  cobra.ExactArgs(3),
	RunE:  readMemory,
}

var readConfig = config.NewWithOpts()

func init() {
	readConfig.MustViperize(readCmd)
}

func readMemory(cmd *cobra.Command, args []string) error {
	pid, err := parsePID(args[:1])
	if err != nil {
		return err
	}
	addr, err := parseUint(args[1], 64)
	if err != nil {
		return errors.Wrapf(err, "invalid address %q", args[1])
	}
	n, err := parseUint(args[2], 32)
	if err != nil {
		return errors.Wrapf(err, "invalid size %q", args[2])
	}
	if n > maxReadSize {
		return errors.Errorf("can't read more than %s at once", humanize.IBytes(maxReadSize))
	}
	if err := common.Init(readConfig); err != nil {
		return err
	}

	buf := make([]byte, n)
	read, err := toolhelp.ReadProcessMemory(pid, uintptr(addr), buf)
	if read > 0 {
		_, _ = fmt.Fprint(os.Stdout, hex.Dump(buf[:read]))
	}
	_, _ = fmt.Fprintf(os.Stderr, "read %s of %s from 0x%x in pid %d\n", humanize.IBytes(uint64(read)), humanize.IBytes(n), addr, pid)
	return err
}
