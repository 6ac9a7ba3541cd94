package mio

import (
	"github.com/TerranMechworks/mech3ax-sub003/merr"
)

// AssertEq asserts actual == expected, spec.md §4.A's "value == expected"
// form.
func AssertEq[T comparable](rule string, offset int64, actual, expected T) error {
	if actual != expected {
		return merr.New(rule, offset, actual, expected)
	}
	return nil
}

// AssertRange asserts lo <= actual <= hi.
func AssertRange[T int | int32 | int64 | uint | uint32 | uint64 | float32 | float64](
	rule string, offset int64, actual, lo, hi T,
) error {
	if actual < lo || actual > hi {
		return merr.New(rule, offset, actual, [2]T{lo, hi})
	}
	return nil
}

// AssertIn asserts actual is one of the given values.
func AssertIn[T comparable](rule string, offset int64, actual T, allowed ...T) error {
	for _, v := range allowed {
		if actual == v {
			return nil
		}
	}
	return merr.New(rule, offset, actual, allowed)
}

// AssertBits decodes raw into a flag set, rejecting any bit outside known.
// This is spec.md §4.A's bitflag assertion form.
func AssertBits[T ~uint8 | ~uint16 | ~uint32](rule string, offset int64, raw, known T) (T, error) {
	if raw&^known != 0 {
		return 0, merr.Of(merr.BadDiscriminant, rule, offset, raw, known)
	}
	return raw, nil
}

// AssertEnum decodes raw into an enum variant, rejecting any value not in
// table. This is spec.md §4.A's enum assertion form.
func AssertEnum[T comparable](rule string, offset int64, raw T, table map[T]string) (T, error) {
	if _, ok := table[raw]; !ok {
		return raw, merr.Of(merr.BadDiscriminant, rule, offset, raw, nil)
	}
	return raw, nil
}
