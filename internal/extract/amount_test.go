package extract_test

import (
	"testing"

	"github.com/ndhoang91/voicap/internal/extract"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want int64
	}{
		// compound phrases
		{"mot tram nghin", "hết một trăm nghìn đồng", 100_000},
		{"hai tram nghin", "tiêu hai trăm nghìn", 200_000},
		{"nua trieu", "chuyển nửa triệu cho mẹ", 500_000},
		{"muoi trieu", "nhận mười triệu tiền thưởng", 10_000_000},

		// digit shorthand
		{"digits nghin", "500 nghìn tiền chợ", 500_000},
		{"digits k", "đổ xăng 50k", 50_000},
		{"digits ngan", "20 ngàn gửi xe", 20_000},
		{"digits trieu", "1 triệu tiền nhà", 1_000_000},
		{"decimal trieu comma", "lương 1,5 triệu", 1_500_000},
		{"decimal trieu dot", "1.5 triệu", 1_500_000},
		{"digits m", "2m tiền học", 2_000_000},
		{"m-word is not the million shorthand", "mua 2 món quà hết 500 nghìn", 500_000},
		{"k-word is not the thousand shorthand", "2 kg gạo hết 100 nghìn", 100_000},

		// literal digits
		{"bare digits", "mua đồ 100000", 100_000},
		{"dot separator", "100.000 đồng", 100_000},
		{"comma separator", "1,000,000 vnđ", 1_000_000},
		{"digits after date", "ngày 15/03/2026 chi 100000 đồng", 100_000},

		// word-number fallback
		{"hai muoi nghin", "hai mươi nghìn tiền trà sữa", 20_000},
		{"muoi lam nghin", "mười lăm nghìn", 15_000},
		{"nam nghin", "năm nghìn lẻ", 5_000},
		{"bay trieu", "bảy triệu tiền lương", 7_000_000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := extract.ParseAmount(tc.in)
			if !ok {
				t.Fatalf("ParseAmount(%q) not ok, want %d", tc.in, tc.want)
			}
			if got != tc.want {
				t.Errorf("ParseAmount(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseAmountNoAmount(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"xin chào bạn",
		"hôm nay trời đẹp",
		"ngày 15/03/2026",   // date digits are not an amount
		"nghìn lời cảm ơn",  // magnitude word without a number
	}
	for _, in := range inputs {
		if got, ok := extract.ParseAmount(in); ok {
			t.Errorf("ParseAmount(%q) = %d, want no amount", in, got)
		}
	}
}
