// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package message

import (
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"

	"github.com/TerranMechworks/mech3ax-sub003/merr"
)

// Entry is one joined message: the ZLocID key scanned from .data, its
// numeric id, and the text value looked up from the MESSAGETABLE or
// STRINGTABLE resource.
type Entry struct {
	Key   string
	ID    uint32
	Value string
}

// Messages is the final joined result of reading a DLL's message table:
// the resource language id plus every (key, id, value) triple.
type Messages struct {
	LanguageID uint32
	Entries    []Entry
}

// variant selects which resource shape holds the message text:
// MESSAGETABLE (MW/PM/RC) or STRINGTABLE (CS).
type variant int

const (
	variantMessageTable variant = iota
	variantStringTable
)

// Read parses name as a DLL and joins its ZLocID keys against its
// MESSAGETABLE or STringTable resource. skip counts leading bytes of the
// .data section the ZLocID scan should skip before looking for the first
// record (RC and CS prepend data the scan must not walk into).
func Read(name string, useStringTable bool, skip uint32) (*Messages, error) {
	pe, err := New(name)
	if err != nil {
		return nil, err
	}
	defer pe.Close()
	return pe.readMessages(useStringTable, skip)
}

// ReadBytes is Read over an in-memory DLL image.
func ReadBytes(data []byte, useStringTable bool, skip uint32) (*Messages, error) {
	pe, err := NewBytes(data)
	if err != nil {
		return nil, err
	}
	return pe.readMessages(useStringTable, skip)
}

func (pe *File) readMessages(useStringTable bool, skip uint32) (*Messages, error) {
	keys, err := pe.scanZLocIDs(skip)
	if err != nil {
		return nil, err
	}

	v := variantMessageTable
	if useStringTable {
		v = variantStringTable
	}
	languageID, values, err := pe.readResourceValues(v)
	if err != nil {
		return nil, err
	}

	return joinMessages(languageID, keys, values)
}

// zlocidRecord is one (entry_id, key) pair scanned from .data, in file
// order.
type zlocidRecord struct {
	id  uint32
	key string
}

// scanZLocIDs linearly scans the .data section for ZLocID records.
//
// Grounded on _examples/original_source/crates/messages/src/read.rs's
// parse_data_section plus the zlocid heuristic it delegates to: a record
// is a NUL-terminated ASCII run of [A-Z0-9_] at least 4 bytes long,
// immediately preceded by a 4-byte little-endian id that is nonzero and
// less than the section's virtual size.
func (pe *File) scanZLocIDs(skip uint32) ([]zlocidRecord, error) {
	section := pe.getSectionByName(".data")
	if section == nil {
		return nil, merr.Of(merr.Unsupported, "message data section", 0, nil, ".data")
	}
	data := section.Data(pe)
	virtualSize := section.Header.VirtualSize
	if virtualSize == 0 {
		virtualSize = section.Header.SizeOfRawData
	}

	var records []zlocidRecord
	i := int(skip)
	for i+4 < len(data) {
		keyStart := i + 4
		j := keyStart
		for j < len(data) && isZLocIDChar(data[j]) {
			j++
		}
		keyLen := j - keyStart
		if keyLen < 4 || j >= len(data) || data[j] != 0 {
			i++
			continue
		}

		id := binary.LittleEndian.Uint32(data[i : i+4])
		if id == 0 || id >= virtualSize {
			i++
			continue
		}

		records = append(records, zlocidRecord{id: id, key: string(data[keyStart:j])})
		i = j + 1
	}
	return records, nil
}

func isZLocIDChar(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

// readResourceValues navigates the resource directory to the
// MESSAGETABLE or STRINGTABLE node and decodes it into an id->value map.
func (pe *File) readResourceValues(v variant) (uint32, map[uint32]string, error) {
	rsrcOffset, err := pe.resourceDirectoryOffset()
	if err != nil {
		return 0, nil, err
	}

	rtID := rtMessageTable
	if v == variantStringTable {
		rtID = rtString
	}

	nameDirOffset, langEntry, err := pe.resourceLeafLanguage(rsrcOffset, rtID)
	if err != nil {
		return 0, nil, err
	}
	languageID := langEntry.Name

	dataEntryOffset := rsrcOffset + langEntry.OffsetToData
	dataEntry, err := pe.parseResourceDataEntry(dataEntryOffset)
	if err != nil {
		return 0, nil, err
	}

	if v == variantStringTable {
		values, err := pe.readStringTableBlocks(rsrcOffset, nameDirOffset)
		if err != nil {
			return 0, nil, err
		}
		return languageID, values, nil
	}

	dataOffset, err := pe.GetOffsetFromRva(dataEntry.OffsetToData)
	if err != nil {
		return 0, nil, err
	}
	raw, err := pe.bytesAt(dataOffset, dataEntry.Size)
	if err != nil {
		return 0, nil, err
	}
	values, err := decodeMessageTable(raw)
	if err != nil {
		return 0, nil, err
	}
	return languageID, values, nil
}

// resourceLeafLanguage walks type -> name -> language and returns the
// name-level directory offset (STRINGTABLE needs every block id under it,
// MESSAGETABLE only the single language leaf) plus that first language
// entry.
func (pe *File) resourceLeafLanguage(rsrcOffset, rtID uint32) (uint32, *ImageResourceDirectoryEntry, error) {
	var dirs []uint32
	typeEntry, err := pe.findDirectoryEntryByID(rsrcOffset, rsrcOffset, rtID, &dirs)
	if err != nil {
		return 0, nil, err
	}
	if typeEntry == nil {
		return 0, nil, merr.Of(merr.Unsupported, "message resource type", int64(rsrcOffset), rtID, "present")
	}
	if typeEntry.OffsetToData&0x80000000 == 0 {
		return 0, nil, merr.New("message resource type entry", int64(rsrcOffset), typeEntry.OffsetToData, "directory")
	}
	nameDirOffset := rsrcOffset + (typeEntry.OffsetToData & 0x7fffffff)

	nameEntry, err := pe.firstDirectoryEntry(nameDirOffset)
	if err != nil {
		return 0, nil, err
	}
	if nameEntry == nil || nameEntry.OffsetToData&0x80000000 == 0 {
		return 0, nil, merr.New("message resource name entry", int64(nameDirOffset), nameEntry, "directory")
	}
	langDirOffset := rsrcOffset + (nameEntry.OffsetToData & 0x7fffffff)

	langEntry, err := pe.firstDirectoryEntry(langDirOffset)
	if err != nil {
		return 0, nil, err
	}
	if langEntry == nil || langEntry.OffsetToData&0x80000000 != 0 {
		return 0, nil, merr.New("message resource language entry", int64(langDirOffset), langEntry, "data")
	}
	return nameDirOffset, langEntry, nil
}

// decodeMessageTable decodes IMAGE_MESSAGE_RESOURCE_DATA: a block count
// followed by {low_id, high_id, offset_to_entries} ranges, each entry
// {length, flags, text[]}.
func decodeMessageTable(raw []byte) (map[uint32]string, error) {
	if len(raw) < 4 {
		return nil, merr.Of(merr.ShortRead, "message table block count", 0, len(raw), 4)
	}
	numBlocks := binary.LittleEndian.Uint32(raw)

	type blockRange struct {
		lowID, highID, offset uint32
	}
	blocks := make([]blockRange, numBlocks)
	pos := 4
	for i := range blocks {
		if pos+12 > len(raw) {
			return nil, merr.Of(merr.ShortRead, "message table block header", int64(pos), len(raw), pos+12)
		}
		blocks[i] = blockRange{
			lowID:  binary.LittleEndian.Uint32(raw[pos:]),
			highID: binary.LittleEndian.Uint32(raw[pos+4:]),
			offset: binary.LittleEndian.Uint32(raw[pos+8:]),
		}
		pos += 12
	}

	values := make(map[uint32]string)
	for _, blk := range blocks {
		offset := int(blk.offset)
		for id := blk.lowID; id <= blk.highID; id++ {
			if offset+4 > len(raw) {
				return nil, merr.Of(merr.ShortRead, "message table entry header", int64(offset), len(raw), offset+4)
			}
			length := binary.LittleEndian.Uint16(raw[offset:])
			flags := binary.LittleEndian.Uint16(raw[offset+2:])
			end := offset + int(length)
			if end > len(raw) || int(length) < 4 {
				return nil, merr.Of(merr.ShortRead, "message table entry body", int64(offset), len(raw), end)
			}
			text := raw[offset+4 : end]

			const messageResourceUnicode = 0x0001
			var value string
			if flags&messageResourceUnicode != 0 {
				decoded, err := decodeUTF16(text)
				if err != nil {
					return nil, merr.Of(merr.BadString, "message table entry text", int64(offset), err, nil)
				}
				value = decoded
			} else {
				value = string(text)
			}
			values[id] = trimTrailingNulAndCRLF(value)

			offset = end
		}
	}
	return values, nil
}

// readStringTableBlocks decodes every numeric-id child of nameDirOffset:
// each one a STRINGTABLE block of 16 consecutive ids, length-prefixed
// UTF-16 strings back to back, empty strings for unused ids.
func (pe *File) readStringTableBlocks(rsrcOffset, nameDirOffset uint32) (map[uint32]string, error) {
	var dir ImageResourceDirectory
	dirSize := uint32(binary.Size(dir))
	if err := pe.structUnpack(&dir, nameDirOffset, dirSize); err != nil {
		return nil, err
	}
	n := int(dir.NumberOfNamedEntries) + int(dir.NumberOfIDEntries)

	values := make(map[uint32]string)
	entryOffset := nameDirOffset + dirSize
	for i := 0; i < n; i++ {
		entry, err := pe.parseResourceDirectoryEntry(entryOffset)
		if err != nil {
			return nil, err
		}
		entryOffset += uint32(binary.Size(*entry))

		if entry.OffsetToData&0x80000000 == 0 {
			return nil, merr.New("string table block entry", int64(nameDirOffset), entry.OffsetToData, "directory")
		}
		langDirOffset := rsrcOffset + (entry.OffsetToData & 0x7fffffff)
		langEntry, err := pe.firstDirectoryEntry(langDirOffset)
		if err != nil {
			return nil, err
		}
		if langEntry == nil || langEntry.OffsetToData&0x80000000 != 0 {
			return nil, merr.New("string table language entry", int64(langDirOffset), langEntry, "data")
		}

		dataEntry, err := pe.parseResourceDataEntry(rsrcOffset + langEntry.OffsetToData)
		if err != nil {
			return nil, err
		}
		dataOffset, err := pe.GetOffsetFromRva(dataEntry.OffsetToData)
		if err != nil {
			return nil, err
		}
		raw, err := pe.bytesAt(dataOffset, dataEntry.Size)
		if err != nil {
			return nil, err
		}

		blockID := entry.Name
		baseID := (blockID - 1) * 16
		if err := decodeStringBlock(raw, baseID, values); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// decodeStringBlock decodes one 16-string STRINGTABLE block into values,
// skipping zero-length entries (ids with no string assigned).
func decodeStringBlock(raw []byte, baseID uint32, values map[uint32]string) error {
	pos := 0
	for i := uint32(0); i < 16; i++ {
		if pos+2 > len(raw) {
			return merr.Of(merr.ShortRead, "string table block length", int64(pos), len(raw), pos+2)
		}
		length := binary.LittleEndian.Uint16(raw[pos:])
		pos += 2
		end := pos + int(length)*2
		if end > len(raw) {
			return merr.Of(merr.ShortRead, "string table block text", int64(pos), len(raw), end)
		}
		if length > 0 {
			decoded, err := decodeUTF16(raw[pos:end])
			if err != nil {
				return merr.Of(merr.BadString, "string table block text", int64(pos), err, nil)
			}
			values[baseID+i] = decoded
		}
		pos = end
	}
	return nil
}

func decodeUTF16(b []byte) (string, error) {
	decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// trimTrailingNulAndCRLF strips the NUL terminator and trailing CRLF
// MESSAGETABLE text carries by convention.
func trimTrailingNulAndCRLF(s string) string {
	for len(s) > 0 {
		switch s[len(s)-1] {
		case 0, '\r', '\n':
			s = s[:len(s)-1]
			continue
		}
		break
	}
	return s
}

// joinMessages pairs every scanned key with its resource value, in scan
// order, and asserts every resource value is referenced exactly once.
//
// Grounded on read.rs's combine: map.remove per key, then assert the
// remaining map is empty.
func joinMessages(languageID uint32, keys []zlocidRecord, values map[uint32]string) (*Messages, error) {
	entries := make([]Entry, 0, len(keys))
	for _, rec := range keys {
		value, ok := values[rec.id]
		if !ok {
			return nil, merr.Of(merr.AssertionFailed, "message value for key", 0, rec.key, rec.id)
		}
		delete(values, rec.id)
		entries = append(entries, Entry{Key: rec.key, ID: rec.id, Value: value})
	}

	if len(values) != 0 {
		return nil, merr.New("all message table strings used", 0, len(values), 0)
	}

	return &Messages{LanguageID: languageID, Entries: entries}, nil
}
