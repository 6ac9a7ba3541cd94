// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package message

import (
	"encoding/binary"

	"github.com/TerranMechworks/mech3ax-sub003/merr"
)

// Resource type identifiers this package cares about; the rest of
// RT_* (icons, dialogs, menus, ...) are never navigated to.
const (
	rtString       uint32 = 6
	rtMessageTable uint32 = 11
)

const maxAllowedEntries = 0x1000

// ImageResourceDirectory is IMAGE_RESOURCE_DIRECTORY: the header of one
// level of the resource tree.
type ImageResourceDirectory struct {
	Characteristics      uint32
	TimeDateStamp        uint32
	MajorVersion         uint16
	MinorVersion         uint16
	NumberOfNamedEntries uint16
	NumberOfIDEntries    uint16
}

// ImageResourceDirectoryEntry is IMAGE_RESOURCE_DIRECTORY_ENTRY.
type ImageResourceDirectoryEntry struct {
	Name         uint32
	OffsetToData uint32
}

// ImageResourceDataEntry is IMAGE_RESOURCE_DATA_ENTRY, the leaf node
// describing one unit of resource data.
type ImageResourceDataEntry struct {
	OffsetToData uint32
	Size         uint32
	CodePage     uint32
	Reserved     uint32
}

func (pe *File) parseResourceDirectoryEntry(offset uint32) (*ImageResourceDirectoryEntry, error) {
	var entry ImageResourceDirectoryEntry
	size := uint32(binary.Size(entry))
	if err := pe.structUnpack(&entry, offset, size); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (pe *File) parseResourceDataEntry(offset uint32) (*ImageResourceDataEntry, error) {
	var entry ImageResourceDataEntry
	size := uint32(binary.Size(entry))
	if err := pe.structUnpack(&entry, offset, size); err != nil {
		return nil, err
	}
	return &entry, nil
}

// findDirectoryEntryByID scans one resource directory level for an entry
// whose numeric id equals want.
func (pe *File) findDirectoryEntryByID(dirOffset, baseOffset, want uint32, dirs *[]uint32) (*ImageResourceDirectoryEntry, error) {
	for _, seen := range *dirs {
		if seen == dirOffset {
			return nil, merr.New("message resource directory cycle", int64(dirOffset), dirOffset, "unvisited")
		}
	}
	*dirs = append(*dirs, dirOffset)

	var dir ImageResourceDirectory
	dirSize := uint32(binary.Size(dir))
	if err := pe.structUnpack(&dir, dirOffset, dirSize); err != nil {
		return nil, err
	}

	n := int(dir.NumberOfNamedEntries) + int(dir.NumberOfIDEntries)
	if n > maxAllowedEntries {
		return nil, merr.New("message resource directory entry count", int64(dirOffset), n, maxAllowedEntries)
	}

	entryOffset := dirOffset + dirSize
	for i := 0; i < n; i++ {
		entry, err := pe.parseResourceDirectoryEntry(entryOffset)
		if err != nil {
			return nil, err
		}
		if entry.Name&0x80000000 == 0 && entry.Name == want {
			return entry, nil
		}
		entryOffset += uint32(binary.Size(*entry))
	}
	return nil, nil
}

// firstDirectoryEntry returns the first entry of the directory at
// dirOffset, used for the name and language levels this package doesn't
// need to distinguish between.
func (pe *File) firstDirectoryEntry(dirOffset uint32) (*ImageResourceDirectoryEntry, error) {
	var dir ImageResourceDirectory
	dirSize := uint32(binary.Size(dir))
	if err := pe.structUnpack(&dir, dirOffset, dirSize); err != nil {
		return nil, err
	}
	n := int(dir.NumberOfNamedEntries) + int(dir.NumberOfIDEntries)
	if n == 0 {
		return nil, nil
	}
	return pe.parseResourceDirectoryEntry(dirOffset + dirSize)
}
