package gamez

import (
	"github.com/TerranMechworks/mech3ax-sub003/merr"
	"github.com/TerranMechworks/mech3ax-sub003/mio"
)

// readNodes reads the fixed-size node array: a run of live nodes
// followed by zero-padding slots out to arraySize. Grounded on spec.md
// §4.C's three-pass description — descriptors (plus each slot's
// trailing data-offset-or-parent-index u32) first, then data bodies in
// order, then every live node's parent/child index arrays — the same
// "headers first, bodies after" shape readModels uses for the model
// array section.
func readNodes(r *mio.CountingReader, arraySize int) ([]*Node, error) {
	nodes := make([]*Node, 0, arraySize)
	trailers := make([]int32, 0, arraySize)
	sawZero := false

	for i := 0; i < arraySize; i++ {
		h, err := readNodeHeader(r)
		if err != nil {
			return nil, err
		}
		if !sawZero && isZeroHeader(h) {
			sawZero = true
		}
		if sawZero {
			back, err := r.I32()
			if err != nil {
				return nil, err
			}
			expected := int32(i + 1)
			if i == arraySize-1 {
				expected = -1
			}
			if back != expected {
				return nil, merr.New("node zero slot back-pointer", r.Prev, back, expected)
			}
			continue
		}

		n := &Node{Header: h}
		off, err := r.I32()
		if err != nil {
			return nil, err
		}
		if h.Class == NodeEmpty {
			if off < 0 || int(off) >= arraySize {
				return nil, merr.New("empty node parent index", r.Prev, off, arraySize)
			}
			n.EmptyParent = off
		}
		nodes = append(nodes, n)
		trailers = append(trailers, off)
	}

	for i, n := range nodes {
		if n.Header.Class == NodeEmpty {
			continue
		}
		if int64(trailers[i]) != r.Offset {
			return nil, merr.New("node data offset", r.Offset, trailers[i], r.Offset)
		}
		body, err := readNodeData(r, n.Header.Class)
		if err != nil {
			return nil, err
		}
		n.Object3d = body.Object3d
		n.Lod = body.Lod
		n.Camera = body.Camera
		n.Display = body.Display
		n.Light = body.Light
		n.Window = body.Window
		n.World = body.World
	}

	for _, n := range nodes {
		parents := make([]int32, n.Header.ParentCount)
		for i := range parents {
			v, err := r.I32()
			if err != nil {
				return nil, err
			}
			parents[i] = v
		}
		n.Parents = parents

		children := make([]int32, n.Header.ChildCount)
		for i := range children {
			v, err := r.I32()
			if err != nil {
				return nil, err
			}
			children[i] = v
		}
		n.Children = children
	}

	return nodes, nil
}

func isZeroHeader(h NodeHeader) bool {
	return h.Name == "" && h.Flags == 0 && h.ZoneID == 0 && h.Class == NodeEmpty &&
		h.ModelIndex == 0 && h.ParentCount == 0 && h.ChildCount == 0 &&
		h.DataPtr == 0 && h.ParentArrayPtr == 0 && h.ChildArrayPtr == 0
}

// writeNodes is readNodes's exact mirror: live node descriptors (with
// data offsets computed up front, since the descriptor block's length
// depends on arraySize rather than len(nodes)), zero-pad slots, data
// bodies, then index arrays.
func writeNodes(w *mio.CountingWriter, nodes []*Node, arraySize int) error {
	dataOffset := w.Offset + int64(arraySize)*(nodeHeaderSize+4)
	offsets := make([]int32, len(nodes))
	for i, n := range nodes {
		if n.Header.Class == NodeEmpty {
			continue
		}
		offsets[i] = int32(dataOffset)
		size, ok := dataSize(n)
		if !ok {
			return merr.Of(merr.Unsupported, "node class", w.Offset, n.Header.Class, "a known node class")
		}
		dataOffset += int64(size)
	}

	for i, n := range nodes {
		if err := writeNodeHeader(w, n.Header); err != nil {
			return err
		}
		if n.Header.Class == NodeEmpty {
			if err := w.I32(n.EmptyParent); err != nil {
				return err
			}
			continue
		}
		if err := w.I32(offsets[i]); err != nil {
			return err
		}
	}
	for i := len(nodes); i < arraySize; i++ {
		if err := writeNodeHeader(w, NodeHeader{Class: NodeEmpty}); err != nil {
			return err
		}
		back := int32(i + 1)
		if i == arraySize-1 {
			back = -1
		}
		if err := w.I32(back); err != nil {
			return err
		}
	}

	for _, n := range nodes {
		switch n.Header.Class {
		case NodeEmpty:
		case NodeObject3d:
			if err := writeObject3d(w, n.Object3d); err != nil {
				return err
			}
		case NodeLod:
			if err := writeLodNode(w, n.Lod); err != nil {
				return err
			}
		case NodeCamera:
			if err := writeCamera(w, n.Camera); err != nil {
				return err
			}
		case NodeDisplay:
			if err := writeDisplay(w, n.Display); err != nil {
				return err
			}
		case NodeLight:
			if err := writeLight(w, n.Light); err != nil {
				return err
			}
		case NodeWindow:
			if err := writeWindow(w, n.Window); err != nil {
				return err
			}
		case NodeWorld:
			if err := writeWorld(w, n.World); err != nil {
				return err
			}
		default:
			return merr.Of(merr.Unsupported, "node class", w.Offset, n.Header.Class, "a known node class")
		}
	}

	for _, n := range nodes {
		for _, p := range n.Parents {
			if err := w.I32(p); err != nil {
				return err
			}
		}
		for _, c := range n.Children {
			if err := w.I32(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func sizeNodes(nodes []*Node, arraySize int) uint32 {
	size := uint32(arraySize) * (nodeHeaderSize + 4)
	for _, n := range nodes {
		if s, ok := dataSize(n); ok {
			size += s
		}
		size += 4 * uint32(len(n.Parents)+len(n.Children))
	}
	return size
}
