// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package message

import (
	"encoding/binary"
	"strings"
)

// ImageSectionHeader is IMAGE_SECTION_HEADER.
type ImageSectionHeader struct {
	Name                 [8]uint8
	VirtualSize          uint32
	VirtualAddress       uint32
	SizeOfRawData        uint32
	PointerToRawData     uint32
	PointerToRelocations uint32
	PointerToLineNumbers uint32
	NumberOfRelocations  uint16
	NumberOfLineNumbers  uint16
	Characteristics      uint32
}

// Section is one parsed section: its header plus the convenience methods
// the ZLocID scan and resource navigation need.
type Section struct {
	Header ImageSectionHeader
}

// String stringifies the (NUL-padded) section name.
func (s *Section) String() string {
	return strings.TrimRight(string(s.Header.Name[:]), "\x00")
}

// Contains reports whether rva falls within this section's virtual range.
func (s *Section) Contains(rva uint32) bool {
	size := s.Header.VirtualSize
	if size == 0 {
		size = s.Header.SizeOfRawData
	}
	return rva >= s.Header.VirtualAddress && rva < s.Header.VirtualAddress+size
}

// Data returns the section's raw file content.
func (s *Section) Data(pe *File) []byte {
	start := s.Header.PointerToRawData
	end := start + s.Header.SizeOfRawData
	if start > pe.size {
		return nil
	}
	if end > pe.size {
		end = pe.size
	}
	return pe.data[start:end]
}

// ParseSectionHeader reads the section table immediately following the
// optional header.
func (pe *File) ParseSectionHeader() error {
	var hdr ImageSectionHeader
	hdrSize := uint32(binary.Size(hdr))

	optHeaderOffset := pe.DOSHeader.AddressOfNewEXEHeader + 4 + uint32(binary.Size(pe.NtHeader.FileHeader))
	offset := optHeaderOffset + uint32(pe.NtHeader.FileHeader.SizeOfOptionalHeader)

	n := pe.NtHeader.FileHeader.NumberOfSections
	pe.Sections = make([]Section, 0, n)
	for i := uint16(0); i < n; i++ {
		if err := pe.structUnpack(&hdr, offset, hdrSize); err != nil {
			return err
		}
		pe.Sections = append(pe.Sections, Section{Header: hdr})
		offset += hdrSize
	}
	return nil
}

// getSectionByRva returns the section containing rva, or nil if none does
// (the RVA then refers to the headers themselves).
func (pe *File) getSectionByRva(rva uint32) *Section {
	for i := range pe.Sections {
		if pe.Sections[i].Contains(rva) {
			return &pe.Sections[i]
		}
	}
	return nil
}

// GetOffsetFromRva implements virt_to_real: the file offset backing a
// relative virtual address, clamped to the owning section's bounds.
func (pe *File) GetOffsetFromRva(rva uint32) (uint32, error) {
	section := pe.getSectionByRva(rva)
	if section == nil {
		if rva < pe.size {
			return rva, nil
		}
		return 0, errOutsideBoundary
	}
	return rva - section.Header.VirtualAddress + section.Header.PointerToRawData, nil
}

// getSectionByName returns the first section whose (trimmed) name equals
// name, used to locate the ZLocID key scan's .data section.
func (pe *File) getSectionByName(name string) *Section {
	for i := range pe.Sections {
		if pe.Sections[i].String() == name {
			return &pe.Sections[i]
		}
	}
	return nil
}
