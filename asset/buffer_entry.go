package asset

import (
	"sort"
	"unsafe"

	"github.com/Carmen-Shannon/gltfasset/internal/bitvec"
)

// BufferEntry owns one shared binary buffer and every accessor that reads
// it, split by usage class. It performs the endian rewrite (§4.4) and
// holds the packed sub-buffers that splitAccessors (§4.5) produces from
// its accessors, one per usage class, when the Context's pipeline runs.
type BufferEntry struct {
	Index      int
	ByteLength int
	Binary     []byte

	// AttributeBinary and IndexBinary hold the packed sub-buffers produced
	// by splitAccessors (§4.5), one per usage class, populated once the
	// Context's pipeline runs the split-and-rebuild stage.
	AttributeBinary []byte
	IndexBinary     []byte

	attributeAccessors []*Accessor
	indexAccessors      []*Accessor
	seen                map[int]bool // usage.listKey(OriginalIndex) -> already added, per usage
}

func newBufferEntry(index, byteLength int) *BufferEntry {
	return &BufferEntry{
		Index:      index,
		ByteLength: byteLength,
		seen:       make(map[int]bool),
	}
}

// AddAccessor registers acc under usage. The same original accessor may be
// registered under both usages (e.g. used once as an attribute source and
// once, unusually, as an index source); each usage list dedups by
// OriginalIndex independently, matching §3's invariant.
func (e *BufferEntry) AddAccessor(acc *Accessor, usage Usage) {
	key := usage.listKey(acc.OriginalIndex)
	if e.seen[key] {
		return
	}
	e.seen[key] = true

	switch usage {
	case UsageAttribute:
		e.attributeAccessors = append(e.attributeAccessors, acc)
	case UsageIndex:
		e.indexAccessors = append(e.indexAccessors, acc)
	}
}

// listKey folds (usage, originalIndex) into one map key so attribute and
// index dedup sets never collide.
func (u Usage) listKey(originalIndex int) int {
	return int(u)<<28 | originalIndex
}

// originalAccessors returns the deduplicated (by OriginalIndex) set of
// accessors spanning both usage lists, the "collect the set of original
// accessors" step §4.4 describes before rewriting.
func (e *BufferEntry) originalAccessors() []*Accessor {
	byIndex := make(map[int]*Accessor)
	for _, acc := range e.attributeAccessors {
		byIndex[acc.OriginalIndex] = acc
	}
	for _, acc := range e.indexAccessors {
		byIndex[acc.OriginalIndex] = acc
	}
	out := make([]*Accessor, 0, len(byIndex))
	for _, acc := range byIndex {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OriginalIndex < out[j].OriginalIndex })
	return out
}

// EndianRewrite swaps every addressed multi-byte component from
// little-endian (the on-disk order) to the host's native order, visiting
// each byte group at most once across every accessor that addresses it.
// Reference: §4.4. On a little-endian host it returns at once without
// touching the bytes, satisfying testable property 5.
func (e *BufferEntry) EndianRewrite() error {
	return e.rewrite(!isLittleEndianHost())
}

// rewrite performs the swap when skip is false. Split out of EndianRewrite
// so tests can force the big-endian code path on a little-endian test
// runner without faking host architecture.
func (e *BufferEntry) rewrite(skip bool) error {
	if skip {
		return nil
	}

	bits := bitvec.New((e.ByteLength + 1) / 2)

	for _, acc := range e.originalAccessors() {
		if err := acc.validate(); err != nil {
			return err
		}
		compSize := componentSize(acc.ComponentType)
		if compSize == 1 {
			continue
		}
		compCount := typeComponentCount(acc.Type)
		stride := acc.EffectiveStride()
		base := acc.ViewOffset + acc.ByteOffset

		for i := 0; i < acc.Count; i++ {
			elemOff := base + i*stride
			for c := 0; c < compCount; c++ {
				compOff := elemOff + c*compSize
				if compOff+compSize > len(e.Binary) {
					return newErr(MalformedAsset, "accessor %d: component out of bounds at offset %d", acc.OriginalIndex, compOff)
				}
				swapComponent(e.Binary, compOff, compSize, bits)
			}
		}
	}
	return nil
}

// swapComponent reverses the compSize bytes starting at offset, unless the
// bit vector shows this byte group (or, for 4-byte groups, either of its
// 2-byte halves) has already been swapped by an earlier, overlapping
// accessor.
func swapComponent(buf []byte, offset, compSize int, bits *bitvec.V) {
	switch compSize {
	case 2:
		k := offset / 2
		if bits.Set(k) {
			return
		}
		buf[offset], buf[offset+1] = buf[offset+1], buf[offset]
	case 4:
		k0, k1 := offset/2, offset/2+1
		set0 := bits.Set(k0)
		set1 := bits.Set(k1)
		if set0 || set1 {
			return
		}
		buf[offset], buf[offset+3] = buf[offset+3], buf[offset]
		buf[offset+1], buf[offset+2] = buf[offset+2], buf[offset+1]
	}
}

// isLittleEndianHost detects the runtime's native byte order. The asset
// pipeline always receives little-endian bytes on disk; this tells
// EndianRewrite whether a swap is needed at all.
func isLittleEndianHost() bool {
	var x uint16 = 1
	return *(*byte)(unsafe.Pointer(&x)) == 1
}
