// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package message extracts MESSAGETABLE/STRINGTABLE resource text from the
// Windows DLLs mech3ax ships, joined against the ZLocID key identifiers
// scattered through the DLL's .data section.
//
// Trimmed hard from the teacher's general-purpose PE parser: PE32 only,
// WINDOWS_GUI subsystem only, read-only (there is no writer, this package
// never produces a PE file), and only the directories needed to reach the
// resource tree are parsed at all.
package message

import (
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/TerranMechworks/mech3ax-sub003/mlog"
)

// File is a memory-mapped (or in-memory) PE32 DLL, parsed just far enough
// to navigate to its MESSAGETABLE/STRINGTABLE resources.
type File struct {
	DOSHeader ImageDOSHeader
	NtHeader  ImageNtHeader
	Sections  []Section

	data   []byte
	mapped mmap.MMap
	f      *os.File
	size   uint32

	logger *mlog.Helper
}

// New mmaps name and parses it.
func New(name string) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	pe := &File{
		data:   data,
		mapped: data,
		f:      f,
		size:   uint32(len(data)),
		logger: mlog.Default(),
	}
	if err := pe.Parse(); err != nil {
		pe.Close()
		return nil, err
	}
	return pe, nil
}

// NewBytes parses an in-memory DLL image, without mmap-ing a file.
func NewBytes(data []byte) (*File, error) {
	pe := &File{
		data:   data,
		size:   uint32(len(data)),
		logger: mlog.Default(),
	}
	if err := pe.Parse(); err != nil {
		return nil, err
	}
	return pe, nil
}

// Close unmaps the backing file, if any.
func (pe *File) Close() error {
	if pe.mapped != nil {
		if err := pe.mapped.Unmap(); err != nil {
			return err
		}
	}
	if pe.f != nil {
		return pe.f.Close()
	}
	return nil
}

// Parse reads the DOS header, NT headers, and section table - enough
// structure to translate RVAs and locate the resource directory.
func (pe *File) Parse() error {
	if pe.size < 64 {
		return errOutsideBoundary
	}
	if err := pe.ParseDOSHeader(); err != nil {
		return err
	}
	if err := pe.ParseNTHeader(); err != nil {
		return err
	}
	if err := pe.ParseSectionHeader(); err != nil {
		return err
	}
	return nil
}

// resourceDirectoryEntry is the index into ImageOptionalHeader32's
// DataDirectory array for the resource table, IMAGE_DIRECTORY_ENTRY_RESOURCE.
const resourceDirectoryEntry = 2

// resourceDirectoryOffset resolves the file offset of the root resource
// directory, or an error if the DLL carries no resources at all.
func (pe *File) resourceDirectoryOffset() (uint32, error) {
	dir := pe.NtHeader.OptionalHeader.DataDirectory[resourceDirectoryEntry]
	if dir.VirtualAddress == 0 || dir.Size == 0 {
		return 0, errOutsideBoundary
	}
	return pe.GetOffsetFromRva(dir.VirtualAddress)
}
