package segment

import (
	"reflect"
	"strings"
	"testing"

	"github.com/notevox/notevox/tts"
)

func packForTest(units []string, voice string, maxLen int) []tts.Chunk {
	p := newPacker(maxLen)
	p.add(units, voice)
	return p.chunks
}

func TestPackerAccumulates(t *testing.T) {
	tests := []struct {
		name     string
		units    []string
		maxLen   int
		expected []string
	}{
		{
			name:     "all units fit one chunk",
			units:    []string{"One.", "Two.", "Three."},
			maxLen:   50,
			expected: []string{"One. Two. Three."},
		},
		{
			name:     "flush when joining would exceed limit",
			units:    []string{"One.", "Two.", "Three."},
			maxLen:   9,
			expected: []string{"One. Two.", "Three."},
		},
		{
			name:     "each unit its own chunk",
			units:    []string{"First sentence.", "Second sentence."},
			maxLen:   16,
			expected: []string{"First sentence.", "Second sentence."},
		},
		{
			name:     "oversized unit splits at whitespace",
			units:    []string{"alpha beta gamma delta"},
			maxLen:   11,
			expected: []string{"alpha beta", "gamma delta"},
		},
		{
			name:     "remainder seeds next chunk",
			units:    []string{"alpha beta gamma", "tail"},
			maxLen:   11,
			expected: []string{"alpha beta", "gamma tail"},
		},
		{
			name:     "empty units are skipped",
			units:    []string{"", "  ", "Real."},
			maxLen:   20,
			expected: []string{"Real."},
		},
		{
			name:     "no units",
			units:    nil,
			maxLen:   10,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := packForTest(tt.units, "af_bella", tt.maxLen)
			var got []string
			for _, c := range chunks {
				got = append(got, c.Text)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("packed %q with limit %d = %q, want %q", tt.units, tt.maxLen, got, tt.expected)
			}
			for _, c := range chunks {
				if c.Voice != "af_bella" {
					t.Errorf("chunk %q lost its voice: %q", c.Text, c.Voice)
				}
			}
		})
	}
}

func TestPackerHardSplit(t *testing.T) {
	word := strings.Repeat("x", 23)
	chunks := packForTest([]string{word}, "af_bella", 10)

	var rebuilt string
	for i, c := range chunks {
		if i < len(chunks)-1 && len([]rune(c.Text)) != 10 {
			t.Errorf("chunk %d has length %d, want exactly 10", i, len([]rune(c.Text)))
		}
		if len([]rune(c.Text)) > 10 {
			t.Errorf("chunk %d exceeds limit: %q", i, c.Text)
		}
		rebuilt += c.Text
	}
	if rebuilt != word {
		t.Errorf("characters lost or duplicated: got %q, want %q", rebuilt, word)
	}
}

func TestPackerLengthInvariant(t *testing.T) {
	units := splitSentences("This is a somewhat longer body of text. It keeps going with more words. Short. " +
		"And here is yet another sentence that will not fit in one small chunk at all.")

	for _, maxLen := range []int{12, 25, 40, 80} {
		chunks := packForTest(units, "af_bella", maxLen)
		for _, c := range chunks {
			if len([]rune(c.Text)) > maxLen {
				t.Errorf("limit %d: chunk %q has length %d", maxLen, c.Text, len([]rune(c.Text)))
			}
			if strings.TrimSpace(c.Text) == "" {
				t.Errorf("limit %d: empty chunk emitted", maxLen)
			}
		}
	}
}

// Concatenating chunk texts and collapsing the joining whitespace
// reproduces the input units in order.
func TestPackerPreservesContent(t *testing.T) {
	units := []string{"One two three.", "Four five.", "Six seven eight nine ten."}
	chunks := packForTest(units, "af_bella", 15)

	want := strings.Join(strings.Fields(strings.Join(units, " ")), " ")
	var parts []string
	for _, c := range chunks {
		parts = append(parts, c.Text)
	}
	got := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")

	if got != want {
		t.Errorf("content changed:\n got %q\nwant %q", got, want)
	}
}
