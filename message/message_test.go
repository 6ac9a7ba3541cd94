package message

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestScanZLocIDs(t *testing.T) {
	var data bytes.Buffer
	write := func(id uint32, key string) {
		binary.Write(&data, binary.LittleEndian, id)
		data.WriteString(key)
		data.WriteByte(0)
	}
	write(1, "ZOVERHEAT")
	write(2, "ZCOOLANT")
	data.Write([]byte{0xff, 0xff, 0xff}) // trailing junk, no valid record

	pe := &File{
		data: data.Bytes(),
		size: uint32(data.Len()),
		Sections: []Section{{Header: ImageSectionHeader{
			Name:             [8]byte{'.', 'd', 'a', 't', 'a'},
			VirtualSize:      uint32(data.Len()),
			PointerToRawData: 0,
			SizeOfRawData:    uint32(data.Len()),
		}}},
	}

	records, err := pe.scanZLocIDs(0)
	if err != nil {
		t.Fatalf("scanZLocIDs() failed, reason: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("scanZLocIDs() = %d records, want 2", len(records))
	}
	if records[0].id != 1 || records[0].key != "ZOVERHEAT" {
		t.Fatalf("scanZLocIDs()[0] = %+v", records[0])
	}
	if records[1].id != 2 || records[1].key != "ZCOOLANT" {
		t.Fatalf("scanZLocIDs()[1] = %+v", records[1])
	}
}

func TestScanZLocIDsRejectsShortKey(t *testing.T) {
	var data bytes.Buffer
	binary.Write(&data, binary.LittleEndian, uint32(1))
	data.WriteString("AB")
	data.WriteByte(0)

	pe := &File{
		data: data.Bytes(),
		size: uint32(data.Len()),
		Sections: []Section{{Header: ImageSectionHeader{
			Name:          [8]byte{'.', 'd', 'a', 't', 'a'},
			VirtualSize:   uint32(data.Len()),
			SizeOfRawData: uint32(data.Len()),
		}}},
	}

	records, err := pe.scanZLocIDs(0)
	if err != nil {
		t.Fatalf("scanZLocIDs() failed, reason: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("scanZLocIDs() = %d records, want 0 (key too short)", len(records))
	}
}

func buildMessageTable(t *testing.T, entries map[uint32]string) []byte {
	t.Helper()
	ids := make([]uint32, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	// one block per entry, for simplicity.
	var body bytes.Buffer
	binary.Write(&body, binary.LittleEndian, uint32(len(ids)))

	headerSize := 4 + 12*len(ids)
	offset := uint32(headerSize)
	type placed struct {
		id     uint32
		text   []byte
		offset uint32
	}
	var texts []placed
	for _, id := range ids {
		text := append([]byte(entries[id]), 0)
		entryLen := uint16(4 + len(text))
		texts = append(texts, placed{id: id, text: text, offset: offset})
		offset += uint32(entryLen)
	}
	for _, p := range texts {
		binary.Write(&body, binary.LittleEndian, p.id)
		binary.Write(&body, binary.LittleEndian, p.id)
		binary.Write(&body, binary.LittleEndian, p.offset)
	}
	for _, p := range texts {
		binary.Write(&body, binary.LittleEndian, uint16(4+len(p.text)))
		binary.Write(&body, binary.LittleEndian, uint16(0)) // ANSI
		body.Write(p.text)
	}
	return body.Bytes()
}

func TestDecodeMessageTable(t *testing.T) {
	raw := buildMessageTable(t, map[uint32]string{
		1: "Overheat warning.",
		2: "Coolant low.",
	})
	values, err := decodeMessageTable(raw)
	if err != nil {
		t.Fatalf("decodeMessageTable() failed, reason: %v", err)
	}
	if values[1] != "Overheat warning." || values[2] != "Coolant low." {
		t.Fatalf("decodeMessageTable() = %+v", values)
	}
}

func TestDecodeStringBlock(t *testing.T) {
	var raw bytes.Buffer
	writeStr := func(s string) {
		u16 := make([]uint16, 0, len(s))
		for _, r := range s {
			u16 = append(u16, uint16(r))
		}
		binary.Write(&raw, binary.LittleEndian, uint16(len(u16)))
		for _, c := range u16 {
			binary.Write(&raw, binary.LittleEndian, c)
		}
	}
	writeStr("hello")
	for i := 0; i < 15; i++ {
		writeStr("")
	}

	values := make(map[uint32]string)
	if err := decodeStringBlock(raw.Bytes(), 0, values); err != nil {
		t.Fatalf("decodeStringBlock() failed, reason: %v", err)
	}
	if values[0] != "hello" {
		t.Fatalf("decodeStringBlock()[0] = %q, want hello", values[0])
	}
	if len(values) != 1 {
		t.Fatalf("decodeStringBlock() = %d entries, want 1 (empty strings skipped)", len(values))
	}
}

func TestJoinMessagesSuccess(t *testing.T) {
	keys := []zlocidRecord{{id: 1, key: "ZOVERHEAT"}, {id: 2, key: "ZCOOLANT"}}
	values := map[uint32]string{1: "Overheat.", 2: "Coolant low."}

	msgs, err := joinMessages(7, keys, values)
	if err != nil {
		t.Fatalf("joinMessages() failed, reason: %v", err)
	}
	if msgs.LanguageID != 7 || len(msgs.Entries) != 2 {
		t.Fatalf("joinMessages() = %+v", msgs)
	}
	if msgs.Entries[0].Key != "ZOVERHEAT" || msgs.Entries[0].Value != "Overheat." {
		t.Fatalf("joinMessages() entry 0 = %+v", msgs.Entries[0])
	}
}

func TestJoinMessagesMissingKey(t *testing.T) {
	keys := []zlocidRecord{{id: 1, key: "ZOVERHEAT"}}
	values := map[uint32]string{}

	if _, err := joinMessages(0, keys, values); err == nil {
		t.Fatalf("joinMessages() succeeded, want error for missing value")
	}
}

func TestJoinMessagesUnreferencedValue(t *testing.T) {
	keys := []zlocidRecord{{id: 1, key: "ZOVERHEAT"}}
	values := map[uint32]string{1: "Overheat.", 2: "Coolant low."}

	if _, err := joinMessages(0, keys, values); err == nil {
		t.Fatalf("joinMessages() succeeded, want error for unreferenced value")
	}
}

// buildSyntheticDLL assembles a minimal, well-formed PE32 WINDOWS_GUI DLL
// with a .data section holding the given ZLocID bytes and a .rsrc section
// whose sole resource is a MESSAGETABLE with the given language id,
// grounded on the field layouts in dosheader.go/ntheader.go/section.go/
// resource.go.
func buildSyntheticDLL(t *testing.T, zlocidBytes, messageTableBytes []byte, languageID uint16) []byte {
	t.Helper()

	const (
		dataRVA = 0x1000
		rsrcRVA = 0x2000
	)

	var rsrc bytes.Buffer
	u16 := func(v uint16) { binary.Write(&rsrc, binary.LittleEndian, v) }
	u32 := func(v uint32) { binary.Write(&rsrc, binary.LittleEndian, v) }

	// type directory (offset 0..24)
	u32(0)
	u32(0)
	u16(0)
	u16(0)
	u16(0)
	u16(1) // NumberOfIDEntries
	u32(rtMessageTable)
	u32(0x80000000 | 24) // -> name directory at 24

	// name directory (offset 24..48)
	u32(0)
	u32(0)
	u16(0)
	u16(0)
	u16(0)
	u16(1)
	u32(1)
	u32(0x80000000 | 48) // -> lang directory at 48

	// lang directory (offset 48..72)
	u32(0)
	u32(0)
	u16(0)
	u16(0)
	u16(0)
	u16(1)
	u32(uint32(languageID))
	u32(72) // -> data entry at 72, no high bit: leaf

	// data entry (offset 72..88)
	u32(rsrcRVA + 88) // OffsetToData RVA of the message table bytes
	u32(uint32(len(messageTableBytes)))
	u32(0)
	u32(0)

	rsrc.Write(messageTableBytes)
	rsrcBytes := rsrc.Bytes()

	const (
		dosHeaderSize   = 64
		ntHeaderPreOpt  = 4 + 20 // signature + file header
		optHeaderSize   = 224
		sectionHdrSize  = 40
		numSections     = 2
		sectionTblStart = dosHeaderSize + ntHeaderPreOpt + optHeaderSize
		dataFileOffset  = sectionTblStart + numSections*sectionHdrSize
	)
	rsrcFileOffset := dataFileOffset + len(zlocidBytes)

	var buf bytes.Buffer
	w16 := func(v uint16) { binary.Write(&buf, binary.LittleEndian, v) }
	w32 := func(v uint32) { binary.Write(&buf, binary.LittleEndian, v) }

	// DOS header
	w16(0x5A4D) // "MZ"
	buf.Write(make([]byte, 58))
	w32(dosHeaderSize) // e_lfanew

	// NT signature + file header
	w32(0x00004550) // "PE\0\0"
	w16(0x14c)       // Machine: I386
	w16(numSections)
	w32(0) // TimeDateStamp
	w32(0) // PointerToSymbolTable
	w32(0) // NumberOfSymbols
	w16(uint16(optHeaderSize))
	w16(0x0002 | 0x2000 | 0x0100) // EXECUTABLE_IMAGE | DLL | 32BIT_MACHINE

	// optional header
	w16(0x10b) // magic: PE32
	buf.WriteByte(0)
	buf.WriteByte(0)
	for i := 0; i < 6; i++ {
		w32(0) // SizeOfCode..BaseOfData
	}
	w32(0x400000) // ImageBase
	w32(0x1000)   // SectionAlignment
	w32(0x200)    // FileAlignment
	for i := 0; i < 6; i++ {
		w16(0)
	}
	w32(0) // Win32VersionValue
	w32(0) // SizeOfImage
	w32(uint32(sectionTblStart))
	w32(0)      // CheckSum
	w16(2)      // Subsystem: WINDOWS_GUI
	w16(0)      // DllCharacteristics
	w32(0)
	w32(0)
	w32(0)
	w32(0)
	w32(0)  // LoaderFlags
	w32(16) // NumberOfRvaAndSizes
	for i := 0; i < 16; i++ {
		if i == 2 {
			w32(rsrcRVA)
			w32(uint32(len(rsrcBytes)))
		} else {
			w32(0)
			w32(0)
		}
	}

	// section headers
	writeSection := func(name string, va, vsize uint32, fileOffset, fsize uint32) {
		var n [8]byte
		copy(n[:], name)
		buf.Write(n[:])
		w32(vsize)
		w32(va)
		w32(fsize)
		w32(fileOffset)
		w32(0)
		w32(0)
		w16(0)
		w16(0)
		w32(0)
	}
	writeSection(".data", dataRVA, uint32(len(zlocidBytes)), uint32(dataFileOffset), uint32(len(zlocidBytes)))
	writeSection(".rsrc", rsrcRVA, uint32(len(rsrcBytes)), uint32(rsrcFileOffset), uint32(len(rsrcBytes)))

	if buf.Len() != dataFileOffset {
		t.Fatalf("header assembly = %d bytes, want %d", buf.Len(), dataFileOffset)
	}
	buf.Write(zlocidBytes)
	buf.Write(rsrcBytes)

	return buf.Bytes()
}

func TestMessageReadBytesRoundTrip(t *testing.T) {
	var zlocid bytes.Buffer
	binary.Write(&zlocid, binary.LittleEndian, uint32(1))
	zlocid.WriteString("ZOVERHEAT")
	zlocid.WriteByte(0)
	binary.Write(&zlocid, binary.LittleEndian, uint32(2))
	zlocid.WriteString("ZCOOLANT")
	zlocid.WriteByte(0)

	messageTable := buildMessageTable(t, map[uint32]string{
		1: "Overheat warning.",
		2: "Coolant low.",
	})

	data := buildSyntheticDLL(t, zlocid.Bytes(), messageTable, 0x0409)

	msgs, err := ReadBytes(data, false, 0)
	if err != nil {
		t.Fatalf("ReadBytes() failed, reason: %v", err)
	}
	if msgs.LanguageID != 0x0409 {
		t.Fatalf("ReadBytes() LanguageID = %x, want 0x409", msgs.LanguageID)
	}
	if len(msgs.Entries) != 2 {
		t.Fatalf("ReadBytes() = %d entries, want 2", len(msgs.Entries))
	}
	byKey := make(map[string]string)
	for _, e := range msgs.Entries {
		byKey[e.Key] = e.Value
	}
	if byKey["ZOVERHEAT"] != "Overheat warning." || byKey["ZCOOLANT"] != "Coolant low." {
		t.Fatalf("ReadBytes() entries = %+v", msgs.Entries)
	}
}
