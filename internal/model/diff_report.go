package model

import (
	"encoding/json"
	"math"
)

// scorePrecision is the number of decimals the score is rounded to for display.
const scorePrecision = 4

// DiffReport is the result of comparing two trees.
type DiffReport struct {
	// Score is the normalized difference in [0, 1] at full precision.
	// 0 means no significant difference, 1 means completely different.
	Score float64

	// RawScore is the weighted sum of all change records before normalization.
	RawScore float64

	// Normalizer is the divisor applied to RawScore.
	Normalizer int

	// BaseNodes and CandidateNodes are the input tree sizes.
	BaseNodes      int
	CandidateNodes int

	// Changes are ordered by a pre-order walk of the base tree with
	// candidate-only additions inserted where they appear.
	Changes []ChangeRecord
}

// DisplayScore returns Score rounded to four decimals.
func (r *DiffReport) DisplayScore() float64 {
	return RoundScore(r.Score)
}

// RoundScore rounds s to the display precision.
func RoundScore(s float64) float64 {
	p := math.Pow10(scorePrecision)
	return math.Round(s*p) / p
}

// Identical reports whether no significant difference was found.
func (r *DiffReport) Identical() bool {
	return len(r.Changes) == 0
}

// ChangeSummary counts change records per type.
type ChangeSummary struct {
	Added            int `json:"added"`
	Removed          int `json:"removed"`
	TextChanges      int `json:"text_changes"`
	AttributeChanges int `json:"attribute_changes"`
	BoundsChanges    int `json:"bounds_changes"`
}

// Total returns the number of counted records.
func (s ChangeSummary) Total() int {
	return s.Added + s.Removed + s.TextChanges + s.AttributeChanges + s.BoundsChanges
}

// Count returns the count for one change type.
func (s ChangeSummary) Count(t ChangeType) int {
	switch t {
	case ChangeAdded:
		return s.Added
	case ChangeRemoved:
		return s.Removed
	case ChangeText:
		return s.TextChanges
	case ChangeAttribute:
		return s.AttributeChanges
	case ChangeBounds:
		return s.BoundsChanges
	default:
		return 0
	}
}

// Summary counts the change records of the report per type.
func (r *DiffReport) Summary() ChangeSummary {
	var s ChangeSummary
	for _, c := range r.Changes {
		switch c.Type {
		case ChangeAdded:
			s.Added++
		case ChangeRemoved:
			s.Removed++
		case ChangeText:
			s.TextChanges++
		case ChangeAttribute:
			s.AttributeChanges++
		case ChangeBounds:
			s.BoundsChanges++
		}
	}
	return s
}

type diffReportJSON struct {
	Score          float64        `json:"score"`
	Changes        []ChangeRecord `json:"changes"`
	BaseNodes      int            `json:"base_nodes"`
	CandidateNodes int            `json:"candidate_nodes"`
}

// MarshalJSON encodes the wire format. The score is rounded and changes
// is always an array.
func (r *DiffReport) MarshalJSON() ([]byte, error) {
	changes := r.Changes
	if changes == nil {
		changes = []ChangeRecord{}
	}
	return json.Marshal(diffReportJSON{
		Score:          r.DisplayScore(),
		Changes:        changes,
		BaseNodes:      r.BaseNodes,
		CandidateNodes: r.CandidateNodes,
	})
}

// UnmarshalJSON decodes the wire format. RawScore and Normalizer are not
// part of it and are left zero.
func (r *DiffReport) UnmarshalJSON(data []byte) error {
	var in diffReportJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = DiffReport{
		Score:          in.Score,
		Changes:        in.Changes,
		BaseNodes:      in.BaseNodes,
		CandidateNodes: in.CandidateNodes,
	}
	return nil
}
