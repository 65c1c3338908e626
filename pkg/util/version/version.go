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

package version

import (
	"fmt"
	"io"
	"runtime"
	"sync"

	semver "github.com/hashicorp/go-version"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
)

// Version stores the SemVer release information along with the
// commit that produced the release and the build date.
type Version struct {
	Major  int
	Minor  int
	Patch  int
	Pre    string
	Commit string
	Date   string
}

var (
	version string
	once    sync.Once
	sem     *semver.Version
)

// Set initializes the version string as global variable.
func Set(v string) { version = v }

// Get returns the version string.
func Get() string {
	if IsDev() {
		return "dev"
	}
	return version
}

// IsDev determines if this is a dev version.
func IsDev() bool { return version == "0.0.0" || version == "" }

// Sem returns the semantic version. Dev builds are reported as 0.0.0.
func Sem() *semver.Version {
	once.Do(func() {
		v := version
		if IsDev() {
			v = "0.0.0"
		}
		var err error
		sem, err = semver.NewSemver(v)
		if err != nil {
			panic(err)
		}
	})
	return sem
}

// New parses the version string and returns the version instance.
func New(v, commit, date string) (Version, error) {
	if v == "" {
		return Version{Commit: commit, Date: date}, nil
	}
	s, err := semver.NewSemver(v)
	if err != nil {
		return Version{}, errors.Wrapf(err, "invalid semver release %q", v)
	}
	segs := s.Segments()
	return Version{
		Major:  segs[0],
		Minor:  segs[1],
		Patch:  segs[2],
		Pre:    s.Prerelease(),
		Commit: commit,
		Date:   date,
	}, nil
}

// String returns the release string or dev for unreleased builds.
func (v Version) String() string {
	if v.Major == 0 && v.Minor == 0 && v.Patch == 0 {
		return "dev"
	}
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s += "-" + v.Pre
	}
	return s
}

// Render dumps the version information to the writer.
func (v Version) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendRow(table.Row{"Version", v.String()})
	t.AppendRow(table.Row{"Commit", v.Commit})
	t.AppendRow(table.Row{"Build date", v.Date})

	t.AppendSeparator()

	t.AppendRow(table.Row{"Go compiler", runtime.Version()})
	t.AppendRow(table.Row{"Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)})

	t.Render()
}
