package segment

import (
	"strings"
	"unicode"
)

// splitSentences splits a segment's text into trimmed, non-empty
// sentence-like units. The scan keeps its own "inside quotation" flag,
// independent of the segmentation state machine, so a terminator inside
// an embedded quotation never ends a unit. A '.', '!' or '?' closes a
// unit only when the scan is outside a quotation and the next character
// is whitespace or end of input; a letter or another period after the
// terminator is treated as an abbreviation and scanning continues. This
// is a heuristic, not a full abbreviation dictionary.
func splitSentences(text string) []string {
	var (
		units   []string
		buf     strings.Builder
		inQuote bool
	)

	flush := func() {
		unit := strings.TrimSpace(buf.String())
		if unit != "" {
			units = append(units, unit)
		}
		buf.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		buf.WriteRune(r)

		if r == '"' {
			inQuote = !inQuote
			continue
		}

		if !isTerminator(r) || inQuote {
			continue
		}

		if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
			flush()
		}
	}

	flush()
	return units
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
