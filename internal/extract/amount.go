package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// amountPhrase maps a high-frequency spoken amount phrase to its value.
type amountPhrase struct {
	phrase string
	value  int64
}

// amountPhrases are checked in order before any digit-based rule. Matching
// is boundary-aware and case-insensitive.
var amountPhrases = []amountPhrase{
	{"một trăm nghìn", 100_000},
	{"hai trăm nghìn", 200_000},
	{"ba trăm nghìn", 300_000},
	{"bốn trăm nghìn", 400_000},
	{"năm trăm nghìn", 500_000},
	{"sáu trăm nghìn", 600_000},
	{"bảy trăm nghìn", 700_000},
	{"tám trăm nghìn", 800_000},
	{"chín trăm nghìn", 900_000},
	{"nửa triệu", 500_000},
	{"mười nghìn", 10_000},
	{"hai mươi nghìn", 20_000},
	{"ba mươi nghìn", 30_000},
	{"năm mươi nghìn", 50_000},
	{"một triệu", 1_000_000},
	{"hai triệu", 2_000_000},
	{"ba triệu", 3_000_000},
	{"năm triệu", 5_000_000},
	{"mười triệu", 10_000_000},
}

var (
	// The magnitude word needs a trailing boundary so that "2 món" is not
	// read as two million. RE2's \b is ASCII-only and would treat every
	// Vietnamese letter as a boundary, so it is spelled out.

	// shorthandMillion matches "1 triệu", "1,5 triệu", "2m".
	shorthandMillion = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:triệu|trieu|m)(?:$|[^\p{L}\p{N}_])`)

	// shorthandThousand matches "500 nghìn", "50k", "20 ngàn".
	shorthandThousand = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:nghìn|nghin|ngàn|ngan|k)(?:$|[^\p{L}\p{N}_])`)

	// thousandsSep collapses digit-group separators ("100.000", "1,000,000").
	// Applied repeatedly because matches cannot overlap in one pass.
	thousandsSep = regexp.MustCompile(`(\d)[.,](\d{3})`)

	digitRun = regexp.MustCompile(`\d+`)
)

// numberWords is the fixed Vietnamese number-word table used by the token
// fallback. Two-word compounds are resolved by wordNumber.
var numberWords = map[string]int64{
	"một":  1,
	"mốt":  1,
	"hai":  2,
	"ba":   3,
	"bốn":  4,
	"tư":   4,
	"năm":  5,
	"lăm":  5,
	"sáu":  6,
	"bảy":  7,
	"tám":  8,
	"chín": 9,
	"mười": 10,
}

// ParseAmount recovers a monetary amount in VND from dictated text.
//
// Rules are attempted in order, first match wins:
//
//  1. The compound phrase table ("một trăm nghìn" → 100000).
//  2. Digit shorthand with a magnitude word: "500 nghìn"/"50k" → ×1000,
//     "1,5 triệu"/"2m" → ×1000000.
//  3. A literal digit run after stripping currency words and thousands
//     separators ("100.000 đồng" → 100000).
//  4. A magnitude word ("nghìn", "ngàn", "triệu") combined with the
//     immediately preceding number word(s) from the fixed table
//     ("hai mươi nghìn" → 20000).
//
// The digit-shorthand rule must run before the literal rule: the digits in
// "500 nghìn" are 500, not the amount. Bare digits keep their priority over
// the word fallback either way.
//
// ok is false when no rule produced a strictly positive amount; callers
// must treat that as extraction failure, never as a zero-amount result.
func ParseAmount(text string) (amount int64, ok bool) {
	lower := strings.ToLower(text)

	for _, p := range amountPhrases {
		if containsWord(lower, p.phrase) {
			return p.value, true
		}
	}

	if m := shorthandMillion.FindStringSubmatch(lower); m != nil {
		if v, ok := scaledAmount(m[1], 1_000_000); ok {
			return v, true
		}
	}
	if m := shorthandThousand.FindStringSubmatch(lower); m != nil {
		if v, ok := scaledAmount(m[1], 1000); ok {
			return v, true
		}
	}

	if v, ok := literalAmount(lower); ok {
		return v, true
	}

	return wordNumberAmount(lower)
}

// scaledAmount parses a digit string (optionally with a decimal comma or
// point) and multiplies it by the magnitude.
func scaledAmount(digits string, magnitude int64) (int64, bool) {
	digits = strings.ReplaceAll(digits, ",", ".")
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	v := int64(math.Round(f * float64(magnitude)))
	if v <= 0 {
		return 0, false
	}
	return v, true
}

// literalAmount strips currency words and thousands separators, then parses
// the first remaining digit run.
func literalAmount(lower string) (int64, bool) {
	for _, cw := range []string{"đồng", "vnđ", "vnd"} {
		lower = strings.ReplaceAll(lower, cw, " ")
	}
	// Spoken dates ("ngày 15/03/2026") carry digits that are not amounts.
	lower = explicitDate.ReplaceAllString(lower, " ")
	for {
		collapsed := thousandsSep.ReplaceAllString(lower, "$1$2")
		if collapsed == lower {
			break
		}
		lower = collapsed
	}
	run := digitRun.FindString(lower)
	if run == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(run, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// wordNumberAmount scans tokens for a magnitude word and combines it with
// the preceding number word or two-word compound.
func wordNumberAmount(lower string) (int64, bool) {
	tokens := strings.Fields(strings.Map(stripPunct, lower))
	for i, tok := range tokens {
		var magnitude int64
		switch tok {
		case "nghìn", "nghin", "ngàn", "ngan":
			magnitude = 1000
		case "triệu", "trieu":
			magnitude = 1_000_000
		default:
			continue
		}

		// Prefer a two-word compound ("hai mươi"), then a single word.
		if i >= 2 {
			if n, ok := compoundNumber(tokens[i-2], tokens[i-1]); ok {
				return n * magnitude, true
			}
		}
		if i >= 1 {
			if n, ok := numberWords[tokens[i-1]]; ok {
				return n * magnitude, true
			}
		}
	}
	return 0, false
}

// compoundNumber resolves two-word Vietnamese numbers: "<unit> mươi" → n×10
// and "mười <unit>" → 10+n.
func compoundNumber(first, second string) (int64, bool) {
	if second == "mươi" {
		if n, ok := numberWords[first]; ok && n >= 2 && n <= 9 {
			return n * 10, true
		}
	}
	if first == "mười" {
		if n, ok := numberWords[second]; ok && n >= 1 && n <= 9 {
			return 10 + n, true
		}
	}
	return 0, false
}

func stripPunct(r rune) rune {
	switch r {
	case '.', ',', '!', '?', ':', ';':
		return ' '
	}
	return r
}
