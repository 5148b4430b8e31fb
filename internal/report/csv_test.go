package report

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/receipt-tracker/internal/domain"
)

func TestRecordsCSV_RoundTrip(t *testing.T) {
	records := []domain.SavedRecord{
		saved("a", "Jeepney", "15", "2025-03-03", "Transportation"),
		saved("b", `Cafe "El Toro", branch 2`, "120.50", "2025-03-05", "Food & Drink"),
		saved("c", "Plain name", "3", "2025-03-04", "Other"),
	}

	out, err := RecordsCSV(records)
	if err != nil {
		t.Fatalf("RecordsCSV failed: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}

	wantHeader := []string{"Date", "Transaction", "Amount", "Category"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}

	if len(rows) != len(records)+1 {
		t.Fatalf("got %d rows, want %d", len(rows), len(records)+1)
	}
	for i, rec := range records {
		row := rows[i+1]
		if row[0] != rec.Date.String() {
			t.Errorf("row %d date = %q, want %q", i, row[0], rec.Date.String())
		}
		if row[1] != rec.Name {
			t.Errorf("row %d name = %q, want %q", i, row[1], rec.Name)
		}
		if row[2] != rec.Amount.String() {
			t.Errorf("row %d amount = %q, want %q", i, row[2], rec.Amount.String())
		}
		if row[3] != rec.Category {
			t.Errorf("row %d category = %q, want %q", i, row[3], rec.Category)
		}
	}

	// Embedded quotes must be doubled in the raw output.
	if !strings.Contains(out, `"Cafe ""El Toro"", branch 2"`) {
		t.Errorf("embedded quotes not doubled:\n%s", out)
	}
}

func TestSummaryCSV(t *testing.T) {
	s := Summary{
		Period: Weekly,
		Title:  "Week of Mar 3 – Mar 9, 2025",
		Totals: map[string]decimal.Decimal{
			"Food & Drink":   decimal.NewFromInt(120),
			"Transportation": decimal.NewFromInt(15),
		},
	}

	out, err := SummaryCSV(s)
	if err != nil {
		t.Fatalf("SummaryCSV failed: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}

	if got := rows[0][1]; got != "Total Amount for Week of Mar 3 – Mar 9, 2025" {
		t.Errorf("header = %q", got)
	}

	// Rows follow taxonomy order: Food & Drink before Transportation.
	if rows[1][0] != "Food & Drink" || rows[1][1] != "120" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[2][0] != "Transportation" || rows[2][1] != "15" {
		t.Errorf("row 2 = %v", rows[2])
	}
	if len(rows) != 3 {
		t.Errorf("categories with no spending must be omitted, got %d rows", len(rows))
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2025, time.March, 6, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		period Period
		want   string
	}{
		{Weekly, "expenses_weekly_2025-03-06.csv"},
		{All, "expenses_all_2025-03-06.csv"},
	}

	for _, tt := range tests {
		if got := ExportFilename(tt.period, now); got != tt.want {
			t.Errorf("ExportFilename(%v) = %q, want %q", tt.period, got, tt.want)
		}
	}
}
