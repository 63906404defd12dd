// Package voices provides the lookup table that maps short inline voice
// codes to the canonical Kokoro voice identifiers, plus discovery of
// voice files shipped alongside the backend. A Table is an immutable
// snapshot: discovery produces a new value, and the host decides when to
// hand it to the engine.
package voices

import (
	"sort"
	"strings"

	"github.com/notevox/notevox/tts"
)

// builtin lists the Kokoro voice set bundled with the backend. Canonical
// identifiers are locale/gender-prefixed: "af" American female, "am"
// American male, "bf" British female, "bm" British male.
var builtin = []string{
	"af",
	"af_bella",
	"af_nicole",
	"af_sarah",
	"af_sky",
	"am_adam",
	"am_michael",
	"bf_emma",
	"bf_isabella",
	"bm_george",
	"bm_lewis",
}

// Table is a case-insensitive mapping from short voice code to canonical
// voice identifier. Resolution never fails: unknown codes resolve to the
// default voice.
type Table struct {
	codes map[string]string
	def   string
}

// NewTable builds a table over the built-in voice set with the given
// default voice.
func NewTable(defaultVoice string) *Table {
	t := &Table{
		codes: make(map[string]string, 2*len(builtin)),
		def:   defaultVoice,
	}
	for _, id := range builtin {
		t.register(id)
	}
	return t
}

// register adds a canonical identifier under both its full name and its
// short name (the part after the locale/gender prefix).
func (t *Table) register(id string) {
	t.codes[strings.ToLower(id)] = id
	if _, short, ok := strings.Cut(id, "_"); ok && short != "" {
		t.codes[strings.ToLower(short)] = id
	}
}

// Resolve returns the canonical identifier for a short code and whether
// the code was known. Unknown codes resolve to the default voice.
func (t *Table) Resolve(code string) (string, bool) {
	if id, ok := t.codes[strings.ToLower(strings.TrimSpace(code))]; ok {
		return id, true
	}
	return t.def, false
}

// Default returns the canonical identifier of the default voice.
func (t *Table) Default() string { return t.def }

// Voices returns the known voices sorted by identifier, with language
// and gender derived from the identifier prefix.
func (t *Table) Voices() []tts.Voice {
	seen := make(map[string]bool, len(t.codes))
	ids := make([]string, 0, len(t.codes))
	for _, id := range t.codes {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	list := make([]tts.Voice, 0, len(ids))
	for _, id := range ids {
		list = append(list, describe(id))
	}
	return list
}

// describe derives voice metadata from a canonical identifier.
func describe(id string) tts.Voice {
	v := tts.Voice{ID: id, Name: id}

	prefix, short, ok := strings.Cut(id, "_")
	if ok && short != "" {
		v.Name = strings.ToUpper(short[:1]) + short[1:]
	}
	if len(prefix) == 2 {
		switch prefix[0] {
		case 'a':
			v.Language = "en-US"
		case 'b':
			v.Language = "en-GB"
		}
		switch prefix[1] {
		case 'f':
			v.Gender = "female"
		case 'm':
			v.Gender = "male"
		}
	}
	return v
}

// clone returns a deep copy sharing nothing with the receiver.
func (t *Table) clone() *Table {
	c := &Table{
		codes: make(map[string]string, len(t.codes)),
		def:   t.def,
	}
	for k, v := range t.codes {
		c.codes[k] = v
	}
	return c
}
