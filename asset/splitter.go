package asset

import "sort"

// splitRun is a coalesced, disjoint byte range from the source buffer that
// will be copied as a unit into the packed output buffer.
type splitRun struct {
	srcStart, srcEnd int
	dstOffset        int
	align            int
}

// splitAccessors packs the given accessors' addressed byte ranges from src
// into a new, tightly packed buffer and rewrites each accessor to point at
// it, per §4.5. It is run once per usage class (attribute, index) of a
// BufferEntry.
func splitAccessors(accessors []*Accessor, src []byte) ([]byte, error) {
	if len(accessors) == 0 {
		return nil, nil
	}

	type extent struct {
		acc              *Accessor
		start, end, align int
	}

	extents := make([]extent, len(accessors))
	for i, acc := range accessors {
		start, end := acc.SourceExtent()
		if end > len(src) {
			return nil, newErr(MalformedAsset, "accessor %d: source extent [%d,%d) exceeds buffer length %d", acc.OriginalIndex, start, end, len(src))
		}
		align := acc.ElementSize()
		if align > 4 {
			align = 4
		}
		if align < 1 {
			align = 1
		}
		extents[i] = extent{acc: acc, start: start, end: end, align: align}
	}

	sort.Slice(extents, func(i, j int) bool { return extents[i].start < extents[j].start })

	// Coalesce overlapping/abutting extents into disjoint runs (§4.5 step 3).
	var runs []splitRun
	var runAccs [][]*Accessor
	for _, ex := range extents {
		if len(runs) > 0 {
			last := &runs[len(runs)-1]
			if ex.start <= last.srcEnd {
				if ex.end > last.srcEnd {
					last.srcEnd = ex.end
				}
				if ex.align > last.align {
					last.align = ex.align
				}
				runAccs[len(runAccs)-1] = append(runAccs[len(runAccs)-1], ex.acc)
				continue
			}
		}
		runs = append(runs, splitRun{srcStart: ex.start, srcEnd: ex.end, align: ex.align})
		runAccs = append(runAccs, []*Accessor{ex.acc})
	}

	// Assign dst offsets with a running, alignment-respecting cursor, then
	// emit the packed output buffer (§4.5 steps 3-4).
	cursor := 0
	out := make([]byte, 0)
	for i := range runs {
		r := &runs[i]
		if r.align > 1 {
			if rem := cursor % r.align; rem != 0 {
				cursor += r.align - rem
			}
		}
		r.dstOffset = cursor
		length := r.srcEnd - r.srcStart
		if need := cursor + length; need > len(out) {
			grown := make([]byte, need)
			copy(grown, out)
			out = grown
		}
		copy(out[cursor:cursor+length], src[r.srcStart:r.srcEnd])
		cursor += length
	}

	// Rebuild each accessor to reference the new buffer (§4.5 step 5).
	for i, run := range runs {
		for _, acc := range runAccs[i] {
			accStart, _ := acc.SourceExtent()
			acc.ViewOffset = run.dstOffset + (accStart - run.srcStart)
			acc.ByteOffset = 0
		}
	}

	return out, nil
}
