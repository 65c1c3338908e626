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

package rotate

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the configuration for the rotate file hook.
type Config struct {
	Filename   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Level      logrus.Level
	Formatter  logrus.Formatter
}

// Hook writes log entries to a file that is rotated by size and age.
// Each entry is annotated with the source location of the logging call.
type Hook struct {
	config Config
	w      io.Writer
	levels []logrus.Level
	// maximum number of frames walked when looking up the caller
	depth int
	skip  int
	// frames from these packages are never reported as the caller
	skipPrefixes []string
}

// NewHook builds a new rotate file hook.
func NewHook(config Config) (logrus.Hook, error) {
	if config.Filename == "" {
		return nil, errors.New("rotate hook requires a log file name")
	}
	if config.Formatter == nil {
		return nil, errors.New("rotate hook requires a formatter")
	}
	hook := &Hook{
		config:       config,
		depth:        20,
		skip:         5,
		skipPrefixes: []string{"logrus/", "logrus@", "toolhelp/lifecycle.go"},
		levels:       logrus.AllLevels[:config.Level+1],
	}
	hook.w = &lumberjack.Logger{
		Filename:   config.Filename,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
	}
	return hook, nil
}

// Levels determines log levels for which the logs are written.
func (hook *Hook) Levels() []logrus.Level { return hook.levels }

// Fire is called by logrus when it is about to write the log entry.
func (hook *Hook) Fire(entry *logrus.Entry) error {
	file, line := hook.caller()
	e := entry.WithField("source", fmt.Sprintf("%s:%d", file, line))
	e.Level = entry.Level
	e.Message = entry.Message
	e.Time = entry.Time
	b, err := hook.config.Formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = hook.w.Write(b)
	return err
}

func (hook *Hook) caller() (string, int) {
	for i := 0; i < hook.depth; i++ {
		file, line, ok := shortCaller(hook.skip + i)
		if !ok {
			break
		}
		if !hook.skipped(file) {
			return file, line
		}
	}
	return "", 0
}

func (hook *Hook) skipped(file string) bool {
	for _, prefix := range hook.skipPrefixes {
		if strings.HasPrefix(file, prefix) {
			return true
		}
	}
	return false
}

// shortCaller resolves the caller frame and trims its
// file path to the last directory and file name.
func shortCaller(skip int) (string, int, bool) {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", 0, false
	}
	n := 0
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			n++
			if n >= 2 {
				file = file[i+1:]
				break
			}
		}
	}
	return file, line, true
}
