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

package pe

import (
	"expvar"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rabbitstack/toolhelp/pkg/toolhelp"
	peparser "github.com/saferwall/pe"
	peparserlog "github.com/saferwall/pe/log"
	log "github.com/sirupsen/logrus"
)

var (
	// MaxHeaderSize specifies the maximum size of the PE header read from module memory
	MaxHeaderSize = uint32(os.Getpagesize())
	// MinHeaderSize denotes the minimal valid PE header size
	MinHeaderSize = uint32(0x100)
	// ErrEmptyArea is returned when the header area is empty or zeroed
	ErrEmptyArea = errors.New("image header area is empty")

	moduleReadErrors = expvar.NewInt("pe.module.read.errors")
	parserWarnings   = expvar.NewMap("pe.parser.warnings")
)

// ParseFile parses the image headers given the file system path.
func ParseFile(path string) (*Image, error) {
	return parse(path, nil)
}

// ParseBytes parses the image headers from the given byte slice.
func ParseBytes(data []byte) (*Image, error) {
	if zeroed(data) {
		return nil, ErrEmptyArea
	}
	return parse("", data)
}

// ParseModule reads the header page from the base address of the module
// and parses the in-memory image headers.
func ParseModule(mod toolhelp.ModuleEntry, opts ...toolhelp.Option) (*Image, error) {
	size := MaxHeaderSize
	if mod.BaseSize > 0 && mod.BaseSize < size {
		size = mod.BaseSize
	}
	if size < MinHeaderSize {
		return nil, ErrEmptyArea
	}
	area := make([]byte, size)
	n, err := toolhelp.ReadProcessMemory(mod.ProcessID, mod.BaseAddr, area, opts...)
	if err != nil && n < int(MinHeaderSize) {
		moduleReadErrors.Add(1)
		return nil, errors.Wrapf(err, "unable to read %s header at 0x%x", mod.Name, mod.BaseAddr)
	}
	return ParseBytes(area[:n])
}

// Logger is the adapter for routing PE package logs to logrus.
type Logger struct{}

func (l Logger) Log(level peparserlog.Level, keyvals ...interface{}) error {
	switch level {
	case peparserlog.LevelDebug:
		log.Debug(keyvals[1:]...)
	case peparserlog.LevelWarn:
		parserWarnings.Add(fmt.Sprintf("%s", keyvals[1:]), 1)
	case peparserlog.LevelError, peparserlog.LevelFatal:
		log.Error(keyvals[1:]...)
	default:
		log.Info(keyvals[1:]...)
	}
	return nil
}

func parserOpts() *peparser.Options {
	return &peparser.Options{
		DisableCertValidation:     true,
		OmitIATDirectory:          true,
		OmitSecurityDirectory:     true,
		OmitExceptionDirectory:    true,
		OmitTLSDirectory:          true,
		OmitCLRHeaderDirectory:    true,
		OmitCLRMetadata:           true,
		OmitDelayImportDirectory:  true,
		OmitBoundImportDirectory:  true,
		OmitArchitectureDirectory: true,
		OmitDebugDirectory:        true,
		OmitRelocDirectory:        true,
		OmitResourceDirectory:     true,
		OmitImportDirectory:       true,
		OmitExportDirectory:       true,
		OmitLoadConfigDirectory:   true,
		OmitGlobalPtrDirectory:    true,
		Logger:                    &Logger{},
	}
}

func parse(path string, data []byte) (*Image, error) {
	var pe *peparser.File
	var err error
	if data == nil {
		pe, err = peparser.New(path, parserOpts())
		if err != nil {
			return nil, err
		}
		// only file-backed parsers own a mapping
		defer pe.Close()
	} else {
		pe, err = peparser.NewBytes(data, parserOpts())
		if err != nil {
			return nil, err
		}
	}

	if err := pe.ParseDOSHeader(); err != nil {
		return nil, errors.Wrap(err, "invalid DOS header")
	}
	if err := pe.ParseNTHeader(); err != nil {
		return nil, errors.Wrap(err, "invalid NT header")
	}

	fh := pe.NtHeader.FileHeader
	img := &Image{
		Is64:             pe.Is64,
		Machine:          Machine(fh.Machine),
		NumberOfSections: fh.NumberOfSections,
		LinkTime:         time.Unix(int64(fh.TimeDateStamp), 0).UTC(),
	}

	switch oh := pe.NtHeader.OptionalHeader.(type) {
	case peparser.ImageOptionalHeader64:
		img.ImageBase = oh.ImageBase
		img.EntryPoint = uint64(oh.AddressOfEntryPoint)
		img.Subsystem = Subsystem(oh.Subsystem)
	case peparser.ImageOptionalHeader32:
		img.ImageBase = uint64(oh.ImageBase)
		img.EntryPoint = uint64(oh.AddressOfEntryPoint)
		img.Subsystem = Subsystem(oh.Subsystem)
	}

	img.IsDLL = pe.IsDLL()
	img.IsExecutable = pe.IsEXE()

	return img, nil
}

func zeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
