// Package normalize cleans raw Vietnamese speech-to-text output before it is
// shown to the user or handed to transaction extraction.
//
// The pipeline is a fixed sequence of pure string transformations:
//
//  1. Whitespace normalization — collapse runs of whitespace, strip spaces
//     before punctuation, ensure one space after sentence punctuation.
//  2. Spelling correction — lower-case the text, then apply the ordered rule
//     tables of common recognizer misspellings (missing diacritics, chat
//     abbreviations, domain terms). Matching is whole-token or
//     boundary-aware, so a rule never corrupts a longer word that merely
//     contains its pattern.
//  3. Punctuation inference (full mode only) — append "?", "!" or "." based
//     on keyword sets when the text has no trailing punctuation.
//  4. Capitalization (full mode only) — uppercase the first letter and the
//     first letter after sentence-ending punctuation.
//
// Interim mode ([Normalizer.Interim]) runs only steps 1–2: interim text is
// provisional and fully replaced on the next recognizer event, so inferring
// punctuation or casing for it would only produce flicker.
//
// The pipeline is idempotent: normalizing already-normalized text returns it
// unchanged.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	spaceBeforePunc = regexp.MustCompile(`\s+([.,!?:;])`)
	// Only insert a space after punctuation when a letter follows, so
	// thousands separators inside numbers ("100.000") survive.
	noSpaceAfterPunc = regexp.MustCompile(`([.,!?:;])(\p{L})`)
	wordToken        = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// Normalizer applies the cleanup pipeline. The zero value is not usable;
// construct with [New]. A Normalizer is read-only after construction and
// safe for concurrent use.
type Normalizer struct {
	words   map[string]string
	phrases []phraseRule

	phraseRes []*regexp.Regexp
}

// Option is a functional option for configuring a [Normalizer].
type Option func(*Normalizer)

// WithExtraWordRules merges additional whole-token spelling corrections on
// top of the built-in table. Keys are matched lower-cased.
func WithExtraWordRules(rules map[string]string) Option {
	return func(n *Normalizer) {
		for k, v := range rules {
			n.words[strings.ToLower(k)] = v
		}
	}
}

// WithExtraPhraseRules appends additional multi-word corrections after the
// built-in phrase table. Entries are applied in order.
func WithExtraPhraseRules(rules map[string]string) Option {
	return func(n *Normalizer) {
		for k, v := range rules {
			n.phrases = append(n.phrases, phraseRule{from: strings.ToLower(k), to: v})
		}
	}
}

// New returns a [Normalizer] using the built-in rule tables plus any options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		words:   make(map[string]string, len(wordRules)),
		phrases: append([]phraseRule(nil), phraseRules...),
	}
	for k, v := range wordRules {
		n.words[k] = v
	}
	for _, o := range opts {
		o(n)
	}
	n.phraseRes = make([]*regexp.Regexp, len(n.phrases))
	for i, p := range n.phrases {
		// Boundary on both sides without consuming neighbouring letters
		// or digits. RE2's \b is ASCII-only, which would split Vietnamese
		// words at diacritics, so boundaries are spelled out.
		n.phraseRes[i] = regexp.MustCompile(
			`(^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(p.from) + `($|[^\p{L}\p{N}_])`,
		)
	}
	return n
}

// Normalize runs the full pipeline: whitespace, spelling, punctuation
// inference, capitalization.
func (n *Normalizer) Normalize(raw string) string {
	text := normalizeWhitespace(raw)
	text = n.correctSpelling(text)
	text = n.inferPunctuation(text)
	return capitalizeSentences(text)
}

// Interim runs only the whitespace and spelling steps, for low-latency
// display of provisional transcript text.
func (n *Normalizer) Interim(raw string) string {
	text := normalizeWhitespace(raw)
	return n.correctSpelling(text)
}

// defaultNormalizer backs the package-level convenience functions.
var defaultNormalizer = New()

// Normalize runs the full pipeline with the built-in rule tables.
func Normalize(raw string) string { return defaultNormalizer.Normalize(raw) }

// Interim runs the interim pipeline with the built-in rule tables.
func Interim(raw string) string { return defaultNormalizer.Interim(raw) }

// normalizeWhitespace collapses whitespace runs to single spaces, removes
// spaces before punctuation and guarantees one space after sentence
// punctuation that is followed by a letter.
func normalizeWhitespace(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = spaceBeforePunc.ReplaceAllString(text, "$1")
	text = noSpaceAfterPunc.ReplaceAllString(text, "$1 $2")
	return strings.TrimSpace(text)
}

// correctSpelling lower-cases text and applies the phrase rules followed by
// whole-token word rules.
func (n *Normalizer) correctSpelling(text string) string {
	text = strings.ToLower(text)
	for i, p := range n.phrases {
		// Repeat until stable: adjacent occurrences share the boundary
		// character the regex consumes, so one pass can miss the second.
		for {
			replaced := n.phraseRes[i].ReplaceAllString(text, "${1}"+p.to+"${2}")
			if replaced == text {
				break
			}
			text = replaced
		}
	}
	return wordToken.ReplaceAllStringFunc(text, func(tok string) string {
		if fixed, ok := n.words[tok]; ok {
			return fixed
		}
		return tok
	})
}

// inferPunctuation appends terminal punctuation when the text has none:
// "?" for question keywords, "!" for exclamation keywords, "." otherwise.
func (n *Normalizer) inferPunctuation(text string) string {
	if text == "" {
		return text
	}
	if strings.ContainsAny(text[len(text)-1:], ".,!?:;") {
		return text
	}
	for _, kw := range questionKeywords {
		if containsWord(text, kw) {
			return text + "?"
		}
	}
	for _, kw := range exclamationKeywords {
		if containsWord(text, kw) {
			return text + "!"
		}
	}
	return text + "."
}

// capitalizeSentences uppercases the first letter of the text and the first
// letter following sentence-ending punctuation plus whitespace. Requiring
// the whitespace keeps a period inside a number ("100.000") from starting a
// new sentence.
func capitalizeSentences(text string) string {
	runes := []rune(text)
	capNext := true
	for i, r := range runes {
		switch {
		case capNext && unicode.IsLetter(r):
			runes[i] = unicode.ToUpper(r)
			capNext = false
		case r == '.' || r == '!' || r == '?':
			capNext = i+1 == len(runes) || unicode.IsSpace(runes[i+1])
		}
	}
	return string(runes)
}

// containsWord reports whether text contains phrase delimited by non-word
// characters (or string edges) on both sides, case-insensitively.
func containsWord(text, phrase string) bool {
	text = strings.ToLower(text)
	phrase = strings.ToLower(phrase)
	idx := 0
	for {
		i := strings.Index(text[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		idx = start + 1
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r := lastRune(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r := firstRune(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) rune {
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}
