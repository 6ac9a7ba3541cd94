package mtype

import (
	"github.com/TerranMechworks/mech3ax-sub003/merr"
)

// DecodeFlags decodes raw into a bitflag set, rejecting any bit set outside
// known — the generic realization of spec.md §4.G's bitflag declaration
// ("Decoders reject primitives that have bits set outside the named
// subset"), usable by any package with its own named flag type
// `type Flags uint32` via a thin wrapper (see e.g. archive.EntryFlags).
func DecodeFlags[T ~uint8 | ~uint16 | ~uint32](rule string, offset int64, raw, known T) (T, error) {
	if raw&^known != 0 {
		return 0, merr.Of(merr.BadDiscriminant, rule, offset, raw, known)
	}
	return raw, nil
}

// DecodeDiscriminant decodes raw into an enum variant, rejecting any value
// not present in table — the generic realization of spec.md §4.G's enum
// declaration.
func DecodeDiscriminant[T comparable](rule string, offset int64, raw T, table map[T]string) (T, error) {
	if _, ok := table[raw]; !ok {
		return raw, merr.Of(merr.BadDiscriminant, rule, offset, raw, nil)
	}
	return raw, nil
}
