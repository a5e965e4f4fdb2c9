// Package normalize cleans decoded document text into the line-oriented
// plain text the clause tooling consumes: PDF page furniture removal, wrap
// merging, and HTML boilerplate filtering.
package normalize

// IsCJK reports whether a rune is a CJK ideograph (unified blocks plus the
// extension planes and compatibility ideographs).
func IsCJK(r rune) bool {
	switch {
	case r >= 0x3400 && r <= 0x4DBF,
		r >= 0x4E00 && r <= 0x9FFF,
		r >= 0xF900 && r <= 0xFAFF,
		r >= 0x20000 && r <= 0x2A6DF,
		r >= 0x2A700 && r <= 0x2B73F,
		r >= 0x2B740 && r <= 0x2B81F,
		r >= 0x2B820 && r <= 0x2CEAF,
		r >= 0x2CEB0 && r <= 0x2EBEF,
		r >= 0x30000 && r <= 0x3134F:
		return true
	}
	return false
}

// CountCJK counts CJK ideographs in text.
func CountCJK(text string) int {
	count := 0
	for _, r := range text {
		if IsCJK(r) {
			count++
		}
	}
	return count
}

// LacksExpectedCJK reports whether extracted text is suspiciously empty of
// CJK characters for a document whose title is CJK. Such text usually means
// the PDF text layer holds vector outlines only.
func LacksExpectedCJK(text, title string, minChars int) bool {
	if text == "" || title == "" {
		return false
	}
	if CountCJK(title) == 0 {
		return false
	}
	return CountCJK(text) < minChars
}
