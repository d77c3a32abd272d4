package export

import "github.com/tauraamui/panoexport/pkg/configdef"

// Span is the effective range of frames a run iterates, inclusive.
type Span struct {
	Start, End uint
	Count      uint
}

// ResolveRange clamps the selection to the frames the stream holds. A
// start beyond the effective end yields an empty span rather than an
// error.
func ResolveRange(sel configdef.FrameRange, total uint) Span {
	if total == 0 {
		return Span{}
	}

	span := Span{Start: sel.Start, End: sel.End}
	if sel.All {
		span.Start, span.End = 0, total-1
	}
	if span.End > total-1 {
		span.End = total - 1
	}
	if span.Start > span.End {
		return Span{Start: span.Start, End: span.End}
	}
	span.Count = span.End - span.Start + 1
	return span
}
