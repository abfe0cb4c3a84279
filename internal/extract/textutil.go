package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// containsWord reports whether lower-cased text contains phrase delimited by
// non-word runes (or string edges) on both sides. RE2's \b is ASCII-only and
// mis-handles Vietnamese letters, so boundaries are checked by hand.
func containsWord(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	for idx := 0; idx < len(text); {
		i := strings.Index(text[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(text) || !isWordRune(after)) {
			return true
		}
		idx = start + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
