package segment

import (
	"strings"
	"unicode"

	"github.com/notevox/notevox/tts"
)

// packer accumulates sentence units into chunks no longer than maxLen
// runes. Its buffer carries over between units of one segment and is
// reset at every segment and paragraph start.
type packer struct {
	maxLen int
	chunks []tts.Chunk
	cur    []rune
}

func newPacker(maxLen int) *packer {
	return &packer{maxLen: maxLen}
}

// add packs one segment's sentence units under the configured limit,
// tagging every resulting chunk with the segment's resolved voice. A unit
// longer than the limit is split at the last whitespace at or before the
// limit; when a single word-run exceeds the limit the cut lands exactly
// at the limit, splitting the word. That hard cut is the only case a
// chunk may break inside a word, and it is intentional: the packer must
// terminate even when the limit is smaller than a single word.
func (p *packer) add(units []string, voice string) {
	flush := func() {
		text := strings.TrimSpace(string(p.cur))
		if text != "" {
			p.chunks = append(p.chunks, tts.Chunk{Text: text, Voice: voice})
		}
		p.cur = p.cur[:0]
	}

	for _, unit := range units {
		u := []rune(strings.TrimSpace(unit))
		if len(u) == 0 {
			continue
		}

		if len(u) > p.maxLen {
			flush()
			u = p.splitOversized(u, voice)
		}

		switch {
		case len(p.cur) == 0:
			p.cur = append(p.cur, u...)
		case len(p.cur)+1+len(u) > p.maxLen:
			flush()
			p.cur = append(p.cur, u...)
		default:
			p.cur = append(p.cur, ' ')
			p.cur = append(p.cur, u...)
		}
	}

	flush()
}

// splitOversized emits limit-sized chunks from an oversized unit until
// the remainder fits, then returns the remainder as the next buffer seed.
func (p *packer) splitOversized(u []rune, voice string) []rune {
	for len(u) > p.maxLen {
		cut := lastSpaceBefore(u, p.maxLen)
		var head []rune
		if cut < 0 {
			// No whitespace within the limit: hard cut, splitting a word.
			head, u = u[:p.maxLen], u[p.maxLen:]
		} else {
			head, u = u[:cut], u[cut+1:]
		}
		text := strings.TrimSpace(string(head))
		if text != "" {
			p.chunks = append(p.chunks, tts.Chunk{Text: text, Voice: voice})
		}
		u = trimLeftSpace(u)
	}
	return u
}

// lastSpaceBefore returns the index of the last whitespace rune such that
// the prefix before it is non-empty and no longer than limit, or -1.
func lastSpaceBefore(u []rune, limit int) int {
	window := limit
	if window >= len(u) {
		window = len(u) - 1
	}
	for i := window; i > 0; i-- {
		if unicode.IsSpace(u[i]) {
			return i
		}
	}
	return -1
}

func trimLeftSpace(u []rune) []rune {
	for len(u) > 0 && unicode.IsSpace(u[0]) {
		u = u[1:]
	}
	return u
}
