package report

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/receipt-tracker/internal/domain"
)

// RecordsCSV serializes the full chronological view: one row per record with
// standard CSV quoting (embedded quotes doubled). The same rendering feeds
// both the All-period export and the AI prompt embedding.
func RecordsCSV(records []domain.SavedRecord) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	if err := w.Write([]string{"Date", "Transaction", "Amount", "Category"}); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.Date.String(), rec.Name, rec.Amount.String(), rec.Category}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return b.String(), nil
}

// SummaryCSV serializes a period summary: one row per category with a total,
// in taxonomy order.
func SummaryCSV(s Summary) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	header := []string{"Category", "Total Amount for " + s.Title}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, cat := range domain.Categories {
		total, ok := s.Totals[cat]
		if !ok {
			continue
		}
		if err := w.Write([]string{cat, total.String()}); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return b.String(), nil
}

// ExportFilename names the downloadable file after the active filter and the
// export date, e.g. "expenses_weekly_2025-03-06.csv".
func ExportFilename(p Period, now time.Time) string {
	return fmt.Sprintf("expenses_%s_%s.csv", p.String(), now.Format("2006-01-02"))
}
