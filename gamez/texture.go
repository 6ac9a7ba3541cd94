package gamez

import (
	"fmt"
	"strings"

	"github.com/TerranMechworks/mech3ax-sub003/mio"
	"github.com/TerranMechworks/mech3ax-sub003/mtype"
)

const (
	textureNameWidth = 32
	textureInfoSize  = textureNameWidth + 4 + 4 + 4
)

// TextureFlags are the texture info record's bitflags (spec.md §4.C).
type TextureFlags uint32

const (
	TextureUsed TextureFlags = 1 << 0
)

// Texture is one texture-info record: a name, a stored pointer (opaque,
// round-tripped verbatim), flags, and whether the engine should sample it
// through a palette.
type Texture struct {
	Name        string
	Pointer     uint32
	Flags       TextureFlags
	UsesPalette bool
}

type textureRaw struct {
	Name        [textureNameWidth]byte
	Pointer     uint32
	Flags       uint32
	UsesPalette uint32
}

// readTextures decodes count texture-info records, deduplicating repeated
// names by appending ".N.tif" (spec.md §4.C: "Some variants deduplicate
// names at read time... appending .1.tif, .2.tif"). The original name is
// not recoverable from the deduplicated one alone, so writeTextures must
// be handed the exact same in-memory slice it produced, which is how
// every other dedup/rename pass in this module (archive.renameOnCollision)
// works too.
func readTextures(r *mio.CountingReader, count uint32) ([]Texture, error) {
	out := make([]Texture, count)
	seen := make(map[string]int, count)
	for i := range out {
		var raw textureRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		name, err := mtype.DecodeAsciiPadded("texture name", r.Prev, raw.Name[:])
		if err != nil {
			return nil, err
		}
		name = dedupTextureName(name, seen)
		out[i] = Texture{
			Name:        name,
			Pointer:     raw.Pointer,
			Flags:       TextureFlags(raw.Flags),
			UsesPalette: raw.UsesPalette != 0,
		}
	}
	return out, nil
}

func dedupTextureName(name string, seen map[string]int) string {
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	base := strings.TrimSuffix(name, ".tif")
	return fmt.Sprintf("%s.%d.tif", base, n)
}

func writeTextures(w *mio.CountingWriter, textures []Texture) error {
	for _, t := range textures {
		var raw textureRaw
		copy(raw.Name[:], mtype.EncodeAsciiPadded(t.Name, textureNameWidth))
		raw.Pointer = t.Pointer
		raw.Flags = uint32(t.Flags)
		if t.UsesPalette {
			raw.UsesPalette = 1
		}
		if err := w.Struct(&raw); err != nil {
			return err
		}
	}
	return nil
}

func sizeTextures(count int) uint32 {
	return textureInfoSize * uint32(count)
}
