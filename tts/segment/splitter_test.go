package segment

import (
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:  "simple sentences",
			input: "Hello world. How are you? I'm fine!",
			expected: []string{
				"Hello world.",
				"How are you?",
				"I'm fine!",
			},
		},
		{
			name:     "terminator at end of input",
			input:    "Just one sentence.",
			expected: []string{"Just one sentence."},
		},
		{
			name:     "no terminator at all",
			input:    "trailing text without punctuation",
			expected: []string{"trailing text without punctuation"},
		},
		{
			name:  "abbreviation periods do not split",
			input: "See e.g. the appendix. Then stop.",
			expected: []string{
				"See e.g. the appendix.",
				"Then stop.",
			},
		},
		{
			name:     "decimal number does not split",
			input:    "Pi is 3.14159 roughly.",
			expected: []string{"Pi is 3.14159 roughly."},
		},
		{
			name:  "terminator inside quotation is ignored",
			input: `He said "Stop. Now." and left. Done.`,
			expected: []string{
				`He said "Stop. Now." and left.`,
				"Done.",
			},
		},
		{
			name:  "unbalanced quote swallows the rest",
			input: `She wrote "one. two. three`,
			expected: []string{
				`She wrote "one. two. three`,
			},
		},
		{
			name:  "newline counts as whitespace after terminator",
			input: "First line.\nSecond line.",
			expected: []string{
				"First line.",
				"Second line.",
			},
		},
		{
			name:     "whitespace only",
			input:    "   \t ",
			expected: nil,
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("splitSentences(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
