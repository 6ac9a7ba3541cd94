package mtype

import (
	"github.com/TerranMechworks/mech3ax-sub003/merr"
)

// Count is a validated bound a Index is checked against.
type Count int32

// IndexR is a required index: 0 <= v < bound, never a sentinel.
type IndexR int32

// DecodeIndexR validates raw against bound.
func DecodeIndexR(rule string, offset int64, raw int32, bound Count) (IndexR, error) {
	if raw < 0 || Count(raw) >= bound {
		return 0, merr.New(rule, offset, raw, bound)
	}
	return IndexR(raw), nil
}

// IndexO is an optional index: -1 means "no value", otherwise
// 0 <= v < bound.
type IndexO int32

// NoIndex is the sentinel spec.md §3 calls "no value".
const NoIndex IndexO = -1

// DecodeIndexO validates raw against bound, admitting -1.
func DecodeIndexO(rule string, offset int64, raw int32, bound Count) (IndexO, error) {
	if raw == -1 {
		return NoIndex, nil
	}
	if raw < 0 || Count(raw) >= bound {
		return 0, merr.New(rule, offset, raw, bound)
	}
	return IndexO(raw), nil
}

// IsSet reports whether the optional index carries a value.
func (i IndexO) IsSet() bool { return i != NoIndex }
