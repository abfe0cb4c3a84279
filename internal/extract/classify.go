package extract

import "strings"

// incomeKeywords mark a phrase as income. They are checked before the
// expense default on purpose: dictated transactions are overwhelmingly
// expenses, so anything without an explicit income cue falls through to
// [TypeExpense].
var incomeKeywords = []string{
	"thu",
	"nhận",
	"lương",
	"thưởng",
	"bán",
	"hoàn tiền",
}

// ClassifyType classifies text as income when it contains any income
// keyword (whole-word match, case-insensitive) and as expense otherwise.
func ClassifyType(text string) Type {
	lower := strings.ToLower(text)
	for _, kw := range incomeKeywords {
		if containsWord(lower, kw) {
			return TypeIncome
		}
	}
	return TypeExpense
}
