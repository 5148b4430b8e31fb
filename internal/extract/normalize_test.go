package extract

import (
	"testing"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/receipt-tracker/internal/domain"
)

func TestNormalizeCandidate(t *testing.T) {
	tests := []struct {
		name         string
		raw          map[string]interface{}
		wantName     string // "" means nil expected
		wantAmount   string // "" means nil expected
		wantDate     string // "" means nil expected
		wantCategory string
	}{
		{
			name: "complete response",
			raw: map[string]interface{}{
				"transaction_name": "Coffee",
				"total_amount":     120.0,
				"transaction_date": "2025-03-05",
				"category":         "Food & Drink",
			},
			wantName:     "Coffee",
			wantAmount:   "120",
			wantDate:     "2025-03-05",
			wantCategory: "Food & Drink",
		},
		{
			name: "non-numeric amount becomes nil",
			raw: map[string]interface{}{
				"transaction_name": "Coffee",
				"total_amount":     "120.00",
				"category":         "Food & Drink",
			},
			wantName:     "Coffee",
			wantCategory: "Food & Drink",
		},
		{
			name: "negative amount becomes nil",
			raw: map[string]interface{}{
				"total_amount": -5.0,
			},
			wantCategory: "Other",
		},
		{
			name: "unknown category forced to Other",
			raw: map[string]interface{}{
				"category": "Bribes",
			},
			wantCategory: "Other",
		},
		{
			name: "case mismatch is not a member",
			raw: map[string]interface{}{
				"category": "food & drink",
			},
			wantCategory: "Other",
		},
		{
			name:         "all fields absent",
			raw:          map[string]interface{}{},
			wantCategory: "Other",
		},
		{
			name: "explicit nulls",
			raw: map[string]interface{}{
				"transaction_name": nil,
				"total_amount":     nil,
				"transaction_date": nil,
				"category":         nil,
			},
			wantCategory: "Other",
		},
		{
			name: "unparseable date becomes nil",
			raw: map[string]interface{}{
				"transaction_date": "last tuesday",
			},
			wantCategory: "Other",
		},
		{
			name: "whitespace name becomes nil",
			raw: map[string]interface{}{
				"transaction_name": "   ",
			},
			wantCategory: "Other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := normalizeCandidate(tt.raw)

			if tt.wantName == "" {
				if cand.Name != nil {
					t.Errorf("Name = %q, want nil", *cand.Name)
				}
			} else if cand.Name == nil || *cand.Name != tt.wantName {
				t.Errorf("Name = %v, want %q", cand.Name, tt.wantName)
			}

			if tt.wantAmount == "" {
				if cand.Amount != nil {
					t.Errorf("Amount = %s, want nil", cand.Amount)
				}
			} else if cand.Amount == nil || cand.Amount.String() != tt.wantAmount {
				t.Errorf("Amount = %v, want %s", cand.Amount, tt.wantAmount)
			}

			if tt.wantDate == "" {
				if cand.Date != nil {
					t.Errorf("Date = %s, want nil", cand.Date)
				}
			} else if cand.Date == nil || cand.Date.String() != tt.wantDate {
				t.Errorf("Date = %v, want %s", cand.Date, tt.wantDate)
			}

			if !domain.IsCategory(tt.wantCategory) {
				t.Fatalf("test wants non-taxonomy category %q", tt.wantCategory)
			}
			if cand.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", cand.Category, tt.wantCategory)
			}
		})
	}
}

func TestNormalizeVoiceCandidate_DateFallback(t *testing.T) {
	today := civil.Date{Year: 2025, Month: 3, Day: 6}

	tests := []struct {
		name     string
		raw      map[string]interface{}
		wantDate string
	}{
		{
			name:     "missing date falls back to today",
			raw:      map[string]interface{}{"transaction_name": "Taxi"},
			wantDate: "2025-03-06",
		},
		{
			name:     "explicit null falls back to today",
			raw:      map[string]interface{}{"transaction_date": nil},
			wantDate: "2025-03-06",
		},
		{
			name:     "unparseable date falls back to today",
			raw:      map[string]interface{}{"transaction_date": "last tuesday"},
			wantDate: "2025-03-06",
		},
		{
			name:     "spoken date wins over today",
			raw:      map[string]interface{}{"transaction_date": "2025-03-01"},
			wantDate: "2025-03-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := normalizeVoiceCandidate(tt.raw, today)
			if cand.Date == nil {
				t.Fatal("Date = nil, voice candidates always carry a date")
			}
			if cand.Date.String() != tt.wantDate {
				t.Errorf("Date = %s, want %s", cand.Date, tt.wantDate)
			}
		})
	}
}

func TestNormalizeCandidate_CategoryAlwaysMember(t *testing.T) {
	inputs := []interface{}{"", "FOOD", "travel ", 42.0, nil, true, "Shopping"}
	for _, in := range inputs {
		cand := normalizeCandidate(map[string]interface{}{"category": in})
		if !domain.IsCategory(cand.Category) {
			t.Errorf("category %v normalized to non-member %q", in, cand.Category)
		}
	}
}
