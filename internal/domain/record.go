package domain

import (
	"errors"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ErrIncomplete is returned when a candidate record is missing one of the
// four required fields at the persistence boundary.
var ErrIncomplete = errors.New("incomplete data")

// CandidateRecord is an unsaved, possibly incomplete transaction produced by
// AI extraction or manual/voice entry. Nil fields mean "absent"; Category ""
// means absent. A candidate has no identity.
type CandidateRecord struct {
	Name     *string          `json:"name"`
	Amount   *decimal.Decimal `json:"amount"`
	Date     *civil.Date      `json:"date"`
	Category string           `json:"category,omitempty"`
}

// Record is a complete transaction ready to persist: all four fields present
// and the category a taxonomy member.
type Record struct {
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Date     civil.Date      `json:"date"`
	Category string          `json:"category"`
}

// SavedRecord is a Record with its store-assigned identifier. Identity is
// immutable once assigned.
type SavedRecord struct {
	ID string `json:"id"`
	Record
}

// Validate checks a candidate at the persistence boundary. Partial records
// are rejected with ErrIncomplete, never silently completed with defaults;
// defaults apply only during AI-response normalization.
func (c CandidateRecord) Validate() (Record, error) {
	if c.Name == nil || *c.Name == "" {
		return Record{}, ErrIncomplete
	}
	if c.Amount == nil || c.Amount.IsNegative() {
		return Record{}, ErrIncomplete
	}
	if c.Date == nil || !c.Date.IsValid() {
		return Record{}, ErrIncomplete
	}
	if !IsCategory(c.Category) {
		return Record{}, ErrIncomplete
	}
	return Record{
		Name:     *c.Name,
		Amount:   *c.Amount,
		Date:     *c.Date,
		Category: c.Category,
	}, nil
}
