package extract

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/ndhoang91/voicap/internal/catalog"
)

// fuzzyThreshold is the minimum Jaro-Winkler score for the fuzzy fallback
// when no substring containment matches a catalog entry.
const fuzzyThreshold = 0.85

// keywordRule maps a spoken phrase to the canonical domain name it stands
// for. Rules are evaluated in order; the first keyword found in the text
// wins, so more specific phrases must precede their prefixes.
type keywordRule struct {
	keyword   string
	canonical string
}

// categoryKeywords translate spoken phrases into canonical category names.
var categoryKeywords = []keywordRule{
	{"siêu thị", "Đi chợ, siêu thị"},
	{"đi chợ", "Đi chợ, siêu thị"},
	{"ăn sáng", "Ăn uống"},
	{"ăn trưa", "Ăn uống"},
	{"ăn tối", "Ăn uống"},
	{"cà phê", "Ăn uống"},
	{"trà sữa", "Ăn uống"},
	{"ăn uống", "Ăn uống"},
	{"xăng", "Đi lại"},
	{"gửi xe", "Đi lại"},
	{"taxi", "Đi lại"},
	{"grab", "Đi lại"},
	{"tiền điện", "Hóa đơn"},
	{"tiền nước", "Hóa đơn"},
	{"hóa đơn", "Hóa đơn"},
	{"tiền nhà", "Tiền nhà"},
	{"thuê nhà", "Tiền nhà"},
	{"thuốc", "Sức khỏe"},
	{"khám bệnh", "Sức khỏe"},
	{"học phí", "Giáo dục"},
	{"quần áo", "Mua sắm"},
	{"mua sắm", "Mua sắm"},
	{"lương", "Lương"},
	{"thưởng", "Thưởng"},
}

// walletKeywords translate spoken phrases into canonical wallet names.
var walletKeywords = []keywordRule{
	{"tiền mặt", "tiền mặt"},
	{"thẻ ngân hàng", "thẻ ngân hàng"},
	{"ngân hàng", "thẻ ngân hàng"},
	{"thẻ tín dụng", "thẻ tín dụng"},
	{"momo", "momo"},
	{"ví điện tử", "momo"},
	{"atm", "thẻ ngân hàng"},
}

// SpokenCategory returns the canonical category name for the first category
// keyword present in text.
func SpokenCategory(text string) (string, bool) {
	return firstKeyword(text, categoryKeywords)
}

// SpokenWallet returns the canonical wallet name for the first wallet
// keyword present in text.
func SpokenWallet(text string) (string, bool) {
	return firstKeyword(text, walletKeywords)
}

func firstKeyword(text string, rules []keywordRule) (string, bool) {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if containsWord(lower, r.keyword) {
			return r.canonical, true
		}
	}
	return "", false
}

// MatchEntry fuzzy-matches a canonical spoken name against the caller's
// catalog and returns the ID of the first entry that matches.
//
// Matching is case-insensitive substring containment in either direction —
// the catalog name may contain the spoken name ("Đi chợ, siêu thị" vs
// "siêu thị") or vice versa. When containment finds nothing, a Jaro-Winkler
// pass picks the best-scoring entry above [fuzzyThreshold], which absorbs
// small recognizer misspellings in catalog names.
func MatchEntry(name string, entries []catalog.Entry) (string, bool) {
	spoken := strings.ToLower(strings.TrimSpace(name))
	if spoken == "" {
		return "", false
	}

	for _, e := range entries {
		catName := strings.ToLower(strings.TrimSpace(e.Name))
		if catName == "" {
			continue
		}
		if strings.Contains(catName, spoken) || strings.Contains(spoken, catName) {
			return e.ID, true
		}
	}

	bestID := ""
	bestScore := 0.0
	for _, e := range entries {
		catName := strings.ToLower(strings.TrimSpace(e.Name))
		if catName == "" {
			continue
		}
		if score := matchr.JaroWinkler(spoken, catName, true); score > bestScore {
			bestScore = score
			bestID = e.ID
		}
	}
	if bestScore >= fuzzyThreshold {
		return bestID, true
	}
	return "", false
}
