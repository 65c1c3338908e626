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
	"strconv"

	kerrors "github.com/rabbitstack/toolhelp/pkg/errors"
	"github.com/rabbitstack/toolhelp/pkg/toolhelp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var title = cases.Title(language.English)

// parsePID parses the optional process identifier argument. Zero
// designates the current process.
func parsePID(args []string) (uint32, error) {
	if len(args) == 0 {
		return 0, nil
	}
	pid, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, kerrors.ErrInvalidPID(args[0])
	}
	return uint32(pid), nil
}

// parseUint parses decimal or 0x prefixed hexadecimal values.
func parseUint(s string, bits int) (uint64, error) {
	return strconv.ParseUint(s, 0, bits)
}

// summarize reports the number of enumerated entries on the standard error,
// so it never interferes with structured output.
func summarize(kind toolhelp.Kind, n int, pid uint32) {
	if pid != 0 {
		_, _ = fmt.Fprintf(os.Stderr, "%s snapshot of pid %d: %d entries\n", title.String(kind.String()), pid, n)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "%s snapshot: %d entries\n", title.String(kind.String()), n)
}
