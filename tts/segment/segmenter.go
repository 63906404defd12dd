package segment

// SegmentKind identifies the delimiter-derived type of a segment.
type SegmentKind int

const (
	// KindPlain is narration outside any delimiter.
	KindPlain SegmentKind = iota
	// KindQuoted is text between double quotes, optionally voice-tagged.
	KindQuoted
	// KindEmphasized is text between asterisks outside a quotation.
	KindEmphasized
)

// String returns a readable name for the kind.
func (k SegmentKind) String() string {
	switch k {
	case KindQuoted:
		return "quoted"
	case KindEmphasized:
		return "emphasized"
	default:
		return "plain"
	}
}

// Segment is a maximal contiguous run of text of one kind. Voice is set
// only when an inline voice code tagged a quoted segment; it is empty
// otherwise, deferring the voice choice to configuration.
type Segment struct {
	Text  string
	Kind  SegmentKind
	Voice string
}

// segmentText partitions cleaned text into typed segments with a single
// left-to-right scan. Quotation marks toggle the quoted state; asterisks
// toggle emphasis, but only outside a quotation — inside one they are
// literal characters. Assignments are consumed positionally: an
// assignment whose position equals the offset of an opening quote tags
// the quoted segment that follows. Unbalanced delimiters are not an
// error; whatever is buffered at end of input is flushed as a final
// segment.
func segmentText(text string, assignments []VoiceAssignment) []Segment {
	var (
		segments []Segment
		buf      []rune
		kind     = KindPlain
		voice    string
		ai       int
	)

	flush := func() {
		if len(buf) == 0 {
			return
		}
		segments = append(segments, Segment{Text: string(buf), Kind: kind, Voice: voice})
		buf = buf[:0]
	}

	runes := []rune(text)
	for i, r := range runes {
		switch {
		case r == '"':
			flush()
			if kind == KindQuoted {
				kind = KindPlain
				voice = ""
				continue
			}
			kind = KindQuoted
			voice = ""
			// A token before a closing quote leaves an assignment behind
			// that no opening quote will ever match; skip past those so
			// they cannot block later ones.
			for ai < len(assignments) && assignments[ai].Position < i {
				ai++
			}
			if ai < len(assignments) && assignments[ai].Position == i {
				voice = assignments[ai].Voice
				ai++
			}

		case r == '*' && kind != KindQuoted:
			flush()
			if kind == KindEmphasized {
				kind = KindPlain
			} else {
				kind = KindEmphasized
			}

		default:
			buf = append(buf, r)
		}
	}

	flush()
	return segments
}
