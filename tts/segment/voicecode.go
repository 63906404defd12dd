package segment

import (
	"strings"

	"github.com/notevox/notevox/tts"
)

// codePrefix is the literal that introduces an inline voice code. A token
// like `kttsbella"` immediately before a quotation mark selects the voice
// for the quoted span that follows.
const codePrefix = "ktts"

// VoiceAssignment records a voice selected by an inline voice code. The
// position is the rune offset of the opening quotation mark in the
// cleaned text; assignments are produced in strictly ascending position
// order.
type VoiceAssignment struct {
	Position int
	Voice    string
}

// resolveVoiceCodes scans normalized text for inline voice-code tokens,
// removes them, and records one assignment per token. The cleaned text
// and assignment list are built together in a single forward pass, so
// positions never need retroactive correction. Unrecognized codes still
// produce an assignment carrying the default voice: a token always marks
// a voice switch, audible or not.
func resolveVoiceCodes(text string, voices tts.VoiceResolver) (string, []VoiceAssignment) {
	runes := []rune(text)
	out := make([]rune, 0, len(runes))
	var assignments []VoiceAssignment

	for i := 0; i < len(runes); {
		code, end, ok := matchVoiceCode(runes, i)
		if !ok {
			out = append(out, runes[i])
			i++
			continue
		}

		// The quote at end is kept; the token before it is dropped. The
		// assignment lands on the offset the quote will occupy in the
		// cleaned text.
		voice, _ := voices.Resolve(code)
		assignments = append(assignments, VoiceAssignment{
			Position: len(out),
			Voice:    voice,
		})
		i = end
	}

	return string(out), assignments
}

// matchVoiceCode reports whether an inline voice-code token starts at
// position i: the literal prefix, one or more ASCII letters, then a
// quotation mark. It returns the lowercased letter sequence and the index
// of the quotation mark.
func matchVoiceCode(runes []rune, i int) (code string, end int, ok bool) {
	for _, p := range codePrefix {
		if i >= len(runes) || lowerASCII(runes[i]) != p {
			return "", 0, false
		}
		i++
	}

	start := i
	for i < len(runes) && isASCIILetter(runes[i]) {
		i++
	}
	if i == start || i >= len(runes) || runes[i] != '"' {
		return "", 0, false
	}

	return strings.ToLower(string(runes[start:i])), i, true
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func lowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
