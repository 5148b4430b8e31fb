package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/receipt-tracker/internal/domain"
)

// Summary is the derived, non-persisted category breakdown for one period
// window. For the All selector aggregation is disabled and Totals is nil:
// the history view shows the raw chronological list instead.
type Summary struct {
	Period Period                     `json:"period"`
	Title  string                     `json:"title"`
	Totals map[string]decimal.Decimal `json:"totals,omitempty"`
}

// Summarize computes category totals over the records whose date falls inside
// the window derived from p and now. Summation is exact decimal arithmetic;
// no currency rounding is applied here. Records are never mutated.
func Summarize(records []domain.SavedRecord, p Period, now time.Time) Summary {
	s := Summary{Period: p, Title: p.Title(now)}

	w, ok := p.Window(now)
	if !ok {
		return s
	}

	s.Totals = make(map[string]decimal.Decimal)
	for _, rec := range records {
		if !w.Contains(rec.Date) {
			continue
		}
		s.Totals[rec.Category] = s.Totals[rec.Category].Add(rec.Amount)
	}
	return s
}

// Total is the grand total across all categories in the summary.
func (s Summary) Total() decimal.Decimal {
	var total decimal.Decimal
	for _, amount := range s.Totals {
		total = total.Add(amount)
	}
	return total
}
