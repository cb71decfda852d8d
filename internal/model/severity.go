package model

// Severity ranks how significant a change type is for a reviewer.
// The order mirrors the default scoring weights.
type Severity int

const (
	// SeverityInfo is used for layout movement.
	SeverityInfo Severity = iota

	// SeverityLow is used for functional attribute changes such as
	// enabled, checked or focusable flipping.
	SeverityLow

	// SeverityMedium is used for user visible text changes.
	SeverityMedium

	// SeverityHigh is used for elements appearing or disappearing.
	SeverityHigh
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// ChangeInfo describes a change type for reports.
type ChangeInfo struct {
	Severity    Severity
	Title       string
	Description string
}

var changeInfoMapping = map[ChangeType]ChangeInfo{
	ChangeAdded: {
		Severity:    SeverityHigh,
		Title:       "added elements",
		Description: "Elements present only in the candidate capture.",
	},
	ChangeRemoved: {
		Severity:    SeverityHigh,
		Title:       "removed elements",
		Description: "Elements present only in the base capture.",
	},
	ChangeText: {
		Severity:    SeverityMedium,
		Title:       "text changes",
		Description: "Matched elements whose displayed text differs.",
	},
	ChangeAttribute: {
		Severity:    SeverityLow,
		Title:       "attribute changes",
		Description: "Matched elements whose functional attributes differ.",
	},
	ChangeBounds: {
		Severity:    SeverityInfo,
		Title:       "bounds changes",
		Description: "Matched elements that moved or resized beyond the tolerance.",
	},
}

// Info returns the report metadata of the change type.
// Unknown types get SeverityInfo and the raw type name as title.
func (t ChangeType) Info() ChangeInfo {
	if info, ok := changeInfoMapping[t]; ok {
		return info
	}
	return ChangeInfo{Severity: SeverityInfo, Title: string(t)}
}

// Severity returns the severity of the change type.
func (t ChangeType) Severity() Severity {
	return t.Info().Severity
}
