package archive

import "hash/crc32"

// checksum accumulates the engine's own CRC-32 variant: IEEE polynomial,
// init 0xFFFFFFFF, but without the final XOR the standard algorithm (and
// Go's hash/crc32) always applies. crc32.Update's per-call complement
// trick correctly chains across multiple Write calls as if they were one
// contiguous buffer — the complement-out of one call and the
// complement-in of the next cancel, leaving only the very first
// complement-in and the very last complement-out in effect. Sum32 then
// undoes that last complement-out, since the engine never applied it.
type checksum struct {
	acc uint32
}

func newChecksum() *checksum { return &checksum{} }

func (c *checksum) Write(p []byte) (int, error) {
	c.acc = crc32.Update(c.acc, crc32.IEEETable, p)
	return len(p), nil
}

// Sum32 returns the running CRC register with the final XOR undone.
func (c *checksum) Sum32() uint32 {
	return c.acc ^ 0xFFFFFFFF
}
