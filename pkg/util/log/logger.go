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

package log

import (
	"expvar"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rabbitstack/toolhelp/pkg/util/log/rotate"
	fs "github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

// loggerErrors counts logger setup errors
var loggerErrors = expvar.NewMap("logger.errors")

// errEmptyLogsPath is returned when the logs directory can't be resolved
var errEmptyLogsPath = errors.New("got an empty logs directory path")

// DefaultPath returns the directory where log files are stored when
// the configuration doesn't override it.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		exe, err := os.Executable()
		if err != nil {
			return ""
		}
		return filepath.Join(filepath.Dir(exe), "logs")
	}
	return filepath.Join(dir, "toolhelp", "logs")
}

// InitFromConfig initializes the standard Logrus logger from config options.
// Log lines are written to the filename inside the logs directory.
func InitFromConfig(c Config, filename string) error {
	path := c.Path
	if path == "" {
		path = DefaultPath()
	}
	if path == "" || filename == "" {
		return errEmptyLogsPath
	}
	if _, err := os.Stat(path); err != nil {
		if err := os.MkdirAll(path, os.ModePerm); err != nil {
			return errors.Wrapf(err, "unable to create the %s logs directory", path)
		}
	}

	file := filepath.Join(path, filename)

	var formatter logrus.Formatter
	switch c.Formatter {
	case "json":
		formatter = &logrus.JSONFormatter{}
	default:
		formatter = &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
	}
	logrus.SetFormatter(formatter)

	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	if c.LogStdout {
		logrus.SetOutput(os.Stderr)
	} else {
		logrus.SetOutput(io.Discard)
	}

	rhook, err := rotate.NewHook(rotate.Config{
		MaxAge:     c.MaxAge,
		MaxBackups: c.MaxBackups,
		MaxSize:    c.MaxSize,
		Level:      level,
		Formatter:  formatter,
		Filename:   file,
	})
	if err != nil {
		loggerErrors.Add(err.Error(), 1)
		// fall back to the plain file hook
		pathMap := make(fs.PathMap)
		for _, lvl := range logrus.AllLevels {
			pathMap[lvl] = file
		}
		logrus.AddHook(fs.NewHook(pathMap, formatter))
		logrus.Warnf("unable to initialize rotate file hook: %v", err)
		return nil
	}
	logrus.AddHook(rhook)

	return nil
}
