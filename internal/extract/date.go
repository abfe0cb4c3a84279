package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// isoDate is the wire format for transaction dates.
const isoDate = "2006-01-02"

// explicitDate matches dd/mm/yyyy and dd-mm-yyyy.
var explicitDate = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)

// ExtractDate resolves the transaction date named in text, relative to now.
//
// Recognized forms, first match wins: "hôm nay" (today), "hôm qua"
// (yesterday), "hôm kia" (the day before), and an explicit dd/mm/yyyy or
// dd-mm-yyyy. When nothing matches the current date is returned — a missing
// date is a deliberate default, never a failure.
func ExtractDate(text string, now time.Time) string {
	lower := strings.ToLower(text)

	switch {
	case containsWord(lower, "hôm nay"):
		return now.Format(isoDate)
	case containsWord(lower, "hôm qua"):
		return now.AddDate(0, 0, -1).Format(isoDate)
	case containsWord(lower, "hôm kia"):
		return now.AddDate(0, 0, -2).Format(isoDate)
	}

	if m := explicitDate.FindStringSubmatch(lower); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
		// time.Date normalizes overflow (32/13 becomes a different month);
		// only accept values that round-trip.
		if d.Day() == day && int(d.Month()) == month && d.Year() == year {
			return d.Format(isoDate)
		}
	}

	return now.Format(isoDate)
}
