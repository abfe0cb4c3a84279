// Package extract turns dictated Vietnamese transcript text into a
// structured financial transaction.
//
// Everything here is deterministic rule evaluation — ordered keyword tables,
// fixed regexes and a small number-word table. There is no learned model and
// no network call, so every extractor is trivially unit-testable standalone.
//
// The input is assumed to be transcript text as accumulated during dictation
// (already normalized upstream); Extract does not re-normalize. Amount is
// the only mandatory field: when no strictly positive amount can be
// recovered, the whole extraction fails and no partial transaction is ever
// surfaced.
package extract

import (
	"time"

	"github.com/ndhoang91/voicap/internal/catalog"
)

// Type classifies a transaction as income or expense. Values are the
// domain labels used throughout the finance tracker.
type Type string

const (
	// TypeIncome marks money coming in ("Thu").
	TypeIncome Type = "Thu"

	// TypeExpense marks money going out ("Chi"). Ambiguous phrases default
	// here: spoken transactions are far more often expenses.
	TypeExpense Type = "Chi"
)

// Transaction is the structured result of a successful extraction.
// Invariant: Amount > 0 always holds — a zero-amount Transaction is never
// produced.
type Transaction struct {
	// Type is the income/expense classification.
	Type Type `json:"type"`

	// Amount is the transaction amount in VND.
	Amount int64 `json:"amount"`

	// CategoryID references the matched catalog category, when one matched.
	CategoryID string `json:"category_id,omitempty"`

	// WalletID references the matched catalog wallet, when one matched.
	WalletID string `json:"wallet_id,omitempty"`

	// TransactionDate is the ISO date (yyyy-mm-dd). Always set; defaults
	// to the current date when the text names none.
	TransactionDate string `json:"transaction_date"`

	// Description is the full original spoken text, verbatim, so the user
	// can review intent even when structured extraction was imperfect.
	Description string `json:"description"`
}

// ExtractorOption is a functional option for configuring an [Extractor].
type ExtractorOption func(*Extractor)

// WithClock overrides the time source used for relative date resolution
// ("hôm nay", "hôm qua") and the default transaction date. Tests use this
// for deterministic output.
func WithClock(now func() time.Time) ExtractorOption {
	return func(x *Extractor) {
		x.now = now
	}
}

// Extractor combines the individual entity extractors into one structured
// result. It is read-only after construction and safe for concurrent use.
type Extractor struct {
	now func() time.Time
}

// New returns an [Extractor] using the real clock unless overridden.
func New(opts ...ExtractorOption) *Extractor {
	x := &Extractor{now: time.Now}
	for _, o := range opts {
		o(x)
	}
	return x
}

// Extract runs the type, amount, category, wallet and date extractors
// independently over text and combines them.
//
// The second return value is false when no amount could be recovered; in
// that case no transaction is returned at all. A missing category or wallet
// match does not fail the extraction — the corresponding ID is simply left
// empty.
func (x *Extractor) Extract(text string, categories, wallets []catalog.Entry) (*Transaction, bool) {
	amount, ok := ParseAmount(text)
	if !ok {
		return nil, false
	}

	t := &Transaction{
		Type:            ClassifyType(text),
		Amount:          amount,
		TransactionDate: ExtractDate(text, x.now()),
		Description:     text,
	}

	if name, found := SpokenCategory(text); found {
		if id, matched := MatchEntry(name, categories); matched {
			t.CategoryID = id
		}
	}
	if name, found := SpokenWallet(text); found {
		if id, matched := MatchEntry(name, wallets); matched {
			t.WalletID = id
		}
	}

	return t, true
}
