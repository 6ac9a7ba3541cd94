// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package message

import (
	"encoding/binary"

	"github.com/TerranMechworks/mech3ax-sub003/merr"
)

const (
	imageNTSignature              uint32 = 0x00004550 // "PE\0\0"
	imageNtOptionalHeader32Magic  uint16 = 0x10b
	imageFileMachineI386          uint16 = 0x14c
	imageFileExecutableImage      uint16 = 0x0002
	imageFileDLL                  uint16 = 0x2000
	imageFile32BitMachine         uint16 = 0x0100
	imageFileRequiredMask         uint16 = imageFileExecutableImage | imageFileDLL | imageFile32BitMachine
	imageSubsystemWindowsGUI      uint16 = 2
	imageNumberOfDirectoryEntries uint32 = 16
)

// ImageFileHeader is IMAGE_FILE_HEADER, the COFF header.
type ImageFileHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

// DataDirectory is one entry of the optional header's 16-entry data
// directory array: an RVA/size pair describing a directory's location.
type DataDirectory struct {
	VirtualAddress uint32
	Size           uint32
}

// ImageOptionalHeader32 is IMAGE_OPTIONAL_HEADER32. Every field the
// MESSAGETABLE/STRINGTABLE path doesn't consult is still parsed (the
// struct must match the on-disk layout exactly to keep the trailing
// DataDirectory array at the right offset) but otherwise left unread.
type ImageOptionalHeader32 struct {
	Magic                       uint16
	MajorLinkerVersion          uint8
	MinorLinkerVersion          uint8
	SizeOfCode                  uint32
	SizeOfInitializedData       uint32
	SizeOfUninitializedData     uint32
	AddressOfEntryPoint         uint32
	BaseOfCode                  uint32
	BaseOfData                  uint32
	ImageBase                   uint32
	SectionAlignment            uint32
	FileAlignment               uint32
	MajorOperatingSystemVersion uint16
	MinorOperatingSystemVersion uint16
	MajorImageVersion           uint16
	MinorImageVersion           uint16
	MajorSubsystemVersion       uint16
	MinorSubsystemVersion       uint16
	Win32VersionValue           uint32
	SizeOfImage                 uint32
	SizeOfHeaders                uint32
	CheckSum                    uint32
	Subsystem                   uint16
	DllCharacteristics          uint16
	SizeOfStackReserve          uint32
	SizeOfStackCommit           uint32
	SizeOfHeapReserve           uint32
	SizeOfHeapCommit            uint32
	LoaderFlags                 uint32
	NumberOfRvaAndSizes         uint32
	DataDirectory               [16]DataDirectory
}

// ImageNtHeader is IMAGE_NT_HEADERS, PE32-only: mech3ax's DLLs are always
// 32-bit WINDOWS_GUI, so the PE32+/64-bit branch the upstream parser
// carries is dropped rather than adapted (see DESIGN.md).
type ImageNtHeader struct {
	Signature      uint32
	FileHeader     ImageFileHeader
	OptionalHeader ImageOptionalHeader32
}

// ParseNTHeader reads and validates the PE signature, the COFF file
// header, and the PE32 optional header, per spec.md's exact predicate
// list: I386 machine, EXECUTABLE_IMAGE|DLL|32BIT_MACHINE characteristics
// (and not a 16-bit image), PE32 magic, WINDOWS_GUI subsystem, and
// exactly 16 data directories.
func (pe *File) ParseNTHeader() error {
	ntHeaderOffset := pe.DOSHeader.AddressOfNewEXEHeader

	signature, err := pe.ReadUint32(ntHeaderOffset)
	if err != nil {
		return err
	}
	if signature != imageNTSignature {
		return merr.New("nt header signature", int64(ntHeaderOffset), signature, imageNTSignature)
	}
	pe.NtHeader.Signature = signature

	fileHeaderOffset := ntHeaderOffset + 4
	fileHeaderSize := uint32(binary.Size(pe.NtHeader.FileHeader))
	if err := pe.structUnpack(&pe.NtHeader.FileHeader, fileHeaderOffset, fileHeaderSize); err != nil {
		return err
	}
	fh := pe.NtHeader.FileHeader
	if fh.Machine != imageFileMachineI386 {
		return merr.New("nt header machine", int64(fileHeaderOffset), fh.Machine, imageFileMachineI386)
	}
	if fh.Characteristics&imageFileRequiredMask != imageFileRequiredMask {
		return merr.New("nt header characteristics", int64(fileHeaderOffset)+18, fh.Characteristics,
			"EXECUTABLE_IMAGE|DLL|32BIT_MACHINE")
	}
	const imageFile16BitMachine uint16 = 0x0040
	if fh.Characteristics&imageFile16BitMachine != 0 {
		return merr.New("nt header characteristics", int64(fileHeaderOffset)+18, fh.Characteristics,
			"not 16BIT_MACHINE")
	}

	optHeaderOffset := fileHeaderOffset + fileHeaderSize
	optHeaderSize := uint32(binary.Size(pe.NtHeader.OptionalHeader))
	if fh.SizeOfOptionalHeader != uint16(optHeaderSize) {
		return merr.New("nt header size of optional header", int64(fileHeaderOffset)+16,
			fh.SizeOfOptionalHeader, optHeaderSize)
	}
	if err := pe.structUnpack(&pe.NtHeader.OptionalHeader, optHeaderOffset, optHeaderSize); err != nil {
		return err
	}
	oh := pe.NtHeader.OptionalHeader
	if oh.Magic != imageNtOptionalHeader32Magic {
		return merr.New("optional header magic", int64(optHeaderOffset), oh.Magic, imageNtOptionalHeader32Magic)
	}
	if oh.Subsystem != imageSubsystemWindowsGUI {
		return merr.New("optional header subsystem", int64(optHeaderOffset)+68, oh.Subsystem, imageSubsystemWindowsGUI)
	}
	if oh.NumberOfRvaAndSizes != imageNumberOfDirectoryEntries {
		return merr.New("optional header number of rva and sizes", int64(optHeaderOffset)+92,
			oh.NumberOfRvaAndSizes, imageNumberOfDirectoryEntries)
	}

	return nil
}
