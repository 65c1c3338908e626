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
	"fmt"
	"time"
)

// Machine is the architecture type of the image.
type Machine uint16

const (
	// MachineI386 designates x86 images.
	MachineI386 Machine = 0x14c
	// MachineAMD64 designates x64 images.
	MachineAMD64 Machine = 0x8664
	// MachineARM64 designates ARM64 images.
	MachineARM64 Machine = 0xaa64
	// MachineARMNT designates ARM Thumb-2 images.
	MachineARMNT Machine = 0x1c4
)

func (m Machine) String() string {
	switch m {
	case MachineI386:
		return "x86"
	case MachineAMD64:
		return "x64"
	case MachineARM64:
		return "arm64"
	case MachineARMNT:
		return "arm"
	default:
		return fmt.Sprintf("unknown(0x%x)", uint16(m))
	}
}

// Subsystem is the subsystem required to run the image.
type Subsystem uint16

// Subsystems the image may require.
const (
	SubsystemNative        Subsystem = 1
	SubsystemWindowsGUI    Subsystem = 2
	SubsystemWindowsCUI    Subsystem = 3
	SubsystemNativeWindows Subsystem = 8
	SubsystemEFIApp        Subsystem = 10
)

func (s Subsystem) String() string {
	switch s {
	case SubsystemNative:
		return "native"
	case SubsystemWindowsGUI:
		return "gui"
	case SubsystemWindowsCUI:
		return "console"
	case SubsystemNativeWindows:
		return "native-windows"
	case SubsystemEFIApp:
		return "efi"
	default:
		return fmt.Sprintf("unknown(%d)", uint16(s))
	}
}

// Image contains the headers that identify the format and characteristics of a module image.
type Image struct {
	// Is64 indicates whether the image uses the PE32+ format.
	Is64 bool `json:"is_64" yaml:"is_64"`
	// IsDLL indicates the image is a dynamic-link library.
	IsDLL bool `json:"is_dll" yaml:"is_dll"`
	// IsExecutable indicates the image is an executable.
	IsExecutable bool `json:"is_executable" yaml:"is_executable"`
	// Machine is the target architecture of the image.
	Machine Machine `json:"machine" yaml:"machine"`
	// Subsystem is the subsystem required to run the image.
	Subsystem Subsystem `json:"subsystem" yaml:"subsystem"`
	// LinkTime represents the time that the image was created by the linker.
	LinkTime time.Time `json:"link_time" yaml:"link_time"`
	// EntryPoint is the relative address of the entry point function.
	EntryPoint uint64 `json:"entry_point" yaml:"entry_point"`
	// ImageBase is the preferred load address of the image.
	ImageBase uint64 `json:"image_base" yaml:"image_base"`
	// NumberOfSections is the number of entries in the section table.
	NumberOfSections uint16 `json:"nsections" yaml:"nsections"`
}

// String returns the string representation of the image headers.
func (i Image) String() string {
	return fmt.Sprintf("machine: %s, subsystem: %s, dll: %t, exe: %t, entrypoint: 0x%x, image base: 0x%x, link time: %s",
		i.Machine, i.Subsystem, i.IsDLL, i.IsExecutable, i.EntryPoint, i.ImageBase, i.LinkTime.Format(time.RFC3339))
}
