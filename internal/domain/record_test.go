package domain

import (
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func datePtr(s string) *civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestCandidateRecord_Validate(t *testing.T) {
	tests := []struct {
		name      string
		candidate CandidateRecord
		wantErr   bool
	}{
		{
			name: "complete candidate",
			candidate: CandidateRecord{
				Name:     strPtr("Coffee"),
				Amount:   decPtr("120"),
				Date:     datePtr("2025-03-05"),
				Category: "Food & Drink",
			},
			wantErr: false,
		},
		{
			name: "missing name",
			candidate: CandidateRecord{
				Amount:   decPtr("120"),
				Date:     datePtr("2025-03-05"),
				Category: "Food & Drink",
			},
			wantErr: true,
		},
		{
			name: "empty name",
			candidate: CandidateRecord{
				Name:     strPtr(""),
				Amount:   decPtr("120"),
				Date:     datePtr("2025-03-05"),
				Category: "Food & Drink",
			},
			wantErr: true,
		},
		{
			name: "missing amount",
			candidate: CandidateRecord{
				Name:     strPtr("Coffee"),
				Date:     datePtr("2025-03-05"),
				Category: "Food & Drink",
			},
			wantErr: true,
		},
		{
			name: "negative amount",
			candidate: CandidateRecord{
				Name:     strPtr("Coffee"),
				Amount:   decPtr("-5"),
				Date:     datePtr("2025-03-05"),
				Category: "Food & Drink",
			},
			wantErr: true,
		},
		{
			name: "missing date",
			candidate: CandidateRecord{
				Name:     strPtr("Coffee"),
				Amount:   decPtr("120"),
				Category: "Food & Drink",
			},
			wantErr: true,
		},
		{
			name: "missing category",
			candidate: CandidateRecord{
				Name:   strPtr("Coffee"),
				Amount: decPtr("120"),
				Date:   datePtr("2025-03-05"),
			},
			wantErr: true,
		},
		{
			name: "category outside taxonomy",
			candidate: CandidateRecord{
				Name:     strPtr("Coffee"),
				Amount:   decPtr("120"),
				Date:     datePtr("2025-03-05"),
				Category: "Gadgets",
			},
			wantErr: true,
		},
		{
			name: "zero amount is valid",
			candidate: CandidateRecord{
				Name:     strPtr("Free sample"),
				Amount:   decPtr("0"),
				Date:     datePtr("2025-03-05"),
				Category: "Other",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := tt.candidate.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrIncomplete) {
					t.Errorf("Validate() error = %v, want ErrIncomplete", err)
				}
				return
			}
			if rec.Name != *tt.candidate.Name {
				t.Errorf("Name = %q, want %q", rec.Name, *tt.candidate.Name)
			}
			if !rec.Amount.Equal(*tt.candidate.Amount) {
				t.Errorf("Amount = %s, want %s", rec.Amount, tt.candidate.Amount)
			}
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Food & Drink", "Food & Drink"},
		{"Rent", "Rent"},
		{"Other", "Other"},
		{"food & drink", "Other"}, // membership is exact, not case-insensitive
		{"Gadgets", "Other"},
		{"", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeCategory(tt.input); got != tt.want {
				t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCategories_ContainsFallback(t *testing.T) {
	if !IsCategory(CategoryOther) {
		t.Fatalf("taxonomy must contain the fallback category %q", CategoryOther)
	}
	seen := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		if seen[c] {
			t.Errorf("duplicate category %q", c)
		}
		seen[c] = true
	}
}
