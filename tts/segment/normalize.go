package segment

// quoteVariants lists every quotation-mark code point the normalizer
// recognizes: straight quotes, typographic opening/closing double quotes,
// and the low/high reversed variants.
var quoteVariants = map[rune]bool{
	'"':      true,
	'“': true, // left double quotation mark
	'”': true, // right double quotation mark
	'„': true, // double low-9 quotation mark
	'‟': true, // double high-reversed-9 quotation mark
}

// NormalizeQuotes maps every recognized quotation-mark variant to the
// straight double-quote character. Replacement is strictly one rune for
// one rune, so offsets computed before and after normalization are
// identical. Normalizing already-normalized text is a no-op.
func NormalizeQuotes(text string) string {
	runes := []rune(text)
	changed := false
	for i, r := range runes {
		if r != '"' && quoteVariants[r] {
			runes[i] = '"'
			changed = true
		}
	}
	if !changed {
		return text
	}
	return string(runes)
}
