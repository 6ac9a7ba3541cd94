// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package message

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// errOutsideBoundary is returned when a read would cross the end of the
// mapped file.
var errOutsideBoundary = errors.New("message: reading data outside boundary")

// ReadUint32 reads a little-endian uint32 at offset.
func (pe *File) ReadUint32(offset uint32) (uint32, error) {
	if offset > pe.size-4 {
		return 0, errOutsideBoundary
	}
	return binary.LittleEndian.Uint32(pe.data[offset:]), nil
}

// ReadUint16 reads a little-endian uint16 at offset.
func (pe *File) ReadUint16(offset uint32) (uint16, error) {
	if offset > pe.size-2 {
		return 0, errOutsideBoundary
	}
	return binary.LittleEndian.Uint16(pe.data[offset:]), nil
}

// structUnpack decodes size bytes at offset into iface via binary.Read,
// bounds-checked against the mapped file.
func (pe *File) structUnpack(iface any, offset, size uint32) error {
	total := offset + size
	if total < offset || offset >= pe.size || total > pe.size {
		return errOutsideBoundary
	}
	return binary.Read(bytes.NewReader(pe.data[offset:total]), binary.LittleEndian, iface)
}

// bytesAt returns a length-bounded slice at offset, or an error if it
// would run past the end of the mapped file.
func (pe *File) bytesAt(offset, length uint32) ([]byte, error) {
	total := offset + length
	if total < offset || offset >= pe.size || total > pe.size {
		return nil, errOutsideBoundary
	}
	return pe.data[offset:total], nil
}
