package normalize

// Rule tables for Vietnamese speech-to-text cleanup. Two shapes exist:
// single-token corrections applied by whole-token lookup, and multi-word
// phrase corrections applied with boundary-aware regexes. Both are matched
// against lower-cased text, and every replacement is itself a fixed point of
// the tables so that repeated normalization is a no-op.

// wordRules maps a misrecognized or abbreviated token to its correction.
// Lookup is by whole token only — "thuongmai" is never touched by the
// "thuong" entry.
var wordRules = map[string]string{
	// chat abbreviations
	"ko":  "không",
	"hok": "không",
	"đc":  "được",
	"dc":  "được",
	"vs":  "với",
	"mik": "mình",
	"mk":  "mình",
	"ntn": "như thế nào",

	// missing diacritics on domain terms
	"tien":   "tiền",
	"dong":   "đồng",
	"nghin":  "nghìn",
	"ngan":   "ngàn",
	"trieu":  "triệu",
	"luong":  "lương",
	"thuong": "thưởng",
	"xang":   "xăng",
	"thang":  "tháng",
}

// phraseRule is one ordered multi-word substitution.
type phraseRule struct {
	from string
	to   string
}

// phraseRules are evaluated in order against lower-cased text with
// word-boundary matching on both ends.
var phraseRules = []phraseRule{
	{"hom nay", "hôm nay"},
	{"hom qua", "hôm qua"},
	{"hom kia", "hôm kia"},
	{"ngay mai", "ngày mai"},
	{"sieu thi", "siêu thị"},
	{"tien mat", "tiền mặt"},
	{"an uong", "ăn uống"},
	{"ca phe", "cà phê"},
	{"di cho", "đi chợ"},
	{"bao nhieu", "bao nhiêu"},
	{"ngan hang", "ngân hàng"},
	{"mot tram", "một trăm"},
	{"nam tram", "năm trăm"},
}

// questionKeywords trigger a trailing "?" during punctuation inference.
var questionKeywords = []string{
	"bao nhiêu",
	"mấy",
	"tại sao",
	"vì sao",
	"ở đâu",
	"khi nào",
	"phải không",
	"đúng không",
}

// exclamationKeywords trigger a trailing "!" during punctuation inference.
var exclamationKeywords = []string{
	"quá",
	"tuyệt",
	"tuyệt vời",
	"lắm",
	"ghê",
}
