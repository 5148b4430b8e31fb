package extract

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/receipt-tracker/internal/domain"
)

// normalizeCandidate validates a raw model response field by field,
// independent of what the remote model claims to return:
//
//   - amount: accepted only if numeric, otherwise nil
//   - category: accepted only if an exact taxonomy member, otherwise Other
//   - date: accepted only if it parses as YYYY-MM-DD, otherwise nil
//   - name: trimmed pass-through, empty becomes nil
func normalizeCandidate(raw map[string]interface{}) domain.CandidateRecord {
	cand := domain.CandidateRecord{Category: domain.CategoryOther}

	if name := optionalString(raw, "transaction_name"); name != nil {
		cand.Name = name
	}

	if amount := optionalFloat64(raw, "total_amount"); amount != nil && *amount >= 0 {
		d := decimal.NewFromFloat(*amount)
		cand.Amount = &d
	}

	if dateStr := optionalString(raw, "transaction_date"); dateStr != nil {
		if d, err := civil.ParseDate(*dateStr); err == nil {
			cand.Date = &d
		}
	}

	if cat := optionalString(raw, "category"); cat != nil {
		cand.Category = domain.NormalizeCategory(*cat)
	}

	return cand
}

// normalizeVoiceCandidate is normalizeCandidate plus the voice-only date
// fallback: spoken capture is assumed near-real-time, so a missing or
// unparseable date becomes the caller-supplied today. Image extraction has
// no such fallback.
func normalizeVoiceCandidate(raw map[string]interface{}, today civil.Date) domain.CandidateRecord {
	cand := normalizeCandidate(raw)
	if cand.Date == nil {
		d := today
		cand.Date = &d
	}
	return cand
}

// optionalString returns the trimmed string under key, or nil when the key is
// absent, null, empty, or not a string. Type mismatches are treated as
// absent, not as errors: the model output is untrusted.
func optionalString(m map[string]interface{}, key string) *string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// optionalFloat64 returns the number under key, or nil when the key is
// absent, null, or not numeric.
func optionalFloat64(m map[string]interface{}, key string) *float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	switch val := v.(type) {
	case float64:
		return &val
	case int: // unlikely from encoding/json, but harmless to support
		f := float64(val)
		return &f
	default:
		return nil
	}
}
