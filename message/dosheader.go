// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package message

import (
	"encoding/binary"

	"github.com/TerranMechworks/mech3ax-sub003/merr"
)

// imageDOSSignature is "MZ", the only DOS magic this package accepts (the
// "ZM" variant the upstream parser also tolerates never shows up in the
// mech3ax toolchain's own DLLs).
const imageDOSSignature uint16 = 0x5A4D

// ImageDOSHeader represents the DOS stub every PE file begins with.
type ImageDOSHeader struct {
	Magic                    uint16
	BytesOnLastPageOfFile    uint16
	PagesInFile              uint16
	Relocations              uint16
	SizeOfHeader             uint16
	MinExtraParagraphsNeeded uint16
	MaxExtraParagraphsNeeded uint16
	InitialSS                uint16
	InitialSP                uint16
	Checksum                 uint16
	InitialIP                uint16
	InitialCS                uint16
	AddressOfRelocationTable uint16
	OverlayNumber            uint16
	ReservedWords1           [4]uint16
	OEMIdentifier            uint16
	OEMInformation           uint16
	ReservedWords2           [10]uint16
	AddressOfNewEXEHeader    uint32
}

// ParseDOSHeader reads and validates the DOS stub, and in particular
// e_lfanew, the offset of the IMAGE_NT_HEADERS the rest of parsing hinges
// on.
func (pe *File) ParseDOSHeader() error {
	size := uint32(binary.Size(pe.DOSHeader))
	if err := pe.structUnpack(&pe.DOSHeader, 0, size); err != nil {
		return err
	}

	if pe.DOSHeader.Magic != imageDOSSignature {
		return merr.New("dos header magic", 0, pe.DOSHeader.Magic, imageDOSSignature)
	}

	// e_lfanew can't be null (the DOS and NT signatures would overlap) and
	// can't point past the end of the file.
	if pe.DOSHeader.AddressOfNewEXEHeader < 4 || pe.DOSHeader.AddressOfNewEXEHeader > pe.size {
		return merr.New("dos header e_lfanew", 0x3c, pe.DOSHeader.AddressOfNewEXEHeader, "within file bounds")
	}

	return nil
}
