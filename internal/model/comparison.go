package model

import (
	"time"
)

// Comparison is one comparison job. The pipeline fills it step by step,
// report writers render it and the history database stores it.
type Comparison struct {
	// ID is assigned when the comparison is stored.
	ID string `json:"id,omitempty"`

	// Label names the compared screen, usually the capture file name
	// without extension. Per-screen configuration is looked up by label.
	Label string `json:"label"`

	// BaseSource and CandidateSource describe where the captures came from.
	BaseSource      string `json:"base_source"`
	CandidateSource string `json:"candidate_source"`

	// BaseFingerprint and CandidateFingerprint are SHA3-256 digests of the raw captures.
	BaseFingerprint      string `json:"base_fingerprint,omitempty"`
	CandidateFingerprint string `json:"candidate_fingerprint,omitempty"`

	// BaseScreenshotFingerprint and CandidateScreenshotFingerprint are
	// SHA3-256 digests of the screenshots stored next to the captures, or
	// empty when a capture has none.
	BaseScreenshotFingerprint      string `json:"base_screenshot_fingerprint,omitempty"`
	CandidateScreenshotFingerprint string `json:"candidate_screenshot_fingerprint,omitempty"`

	// BaseXML and CandidateXML are the raw captures.
	BaseXML      []byte `json:"-"`
	CandidateXML []byte `json:"-"`

	// BaseScreenshot and CandidateScreenshot are the PNG screenshots, if any.
	BaseScreenshot      []byte `json:"-"`
	CandidateScreenshot []byte `json:"-"`

	// Base and Candidate are the parsed trees.
	Base      *Node `json:"-"`
	Candidate *Node `json:"-"`

	// Report is set once the comparison ran.
	Report *DiffReport `json:"report,omitempty"`

	// Gate holds the CI gate outcome when a gate expression was evaluated.
	Gate *GateResult `json:"gate,omitempty"`

	// ComparedAt is when the comparison was created.
	ComparedAt time.Time `json:"compared_at"`

	// Duration is the wall time spent in the comparison engine.
	Duration time.Duration `json:"duration_ns,omitempty"`

	// Steps lists the pipeline steps that ran, in order.
	Steps []string `json:"steps,omitempty"`

	// Err is the error that stopped the comparison, if any.
	Err error `json:"-"`

	// ErrorMessage is Err as text for serialized output.
	ErrorMessage string `json:"error,omitempty"`
}

// GateResult is the outcome of a CI gate expression.
type GateResult struct {
	Expression string `json:"expression"`
	Failed     bool   `json:"failed"`
}

// NewComparison creates a comparison job for two capture sources.
func NewComparison(label, baseSource, candidateSource string) *Comparison {
	return &Comparison{
		Label:           label,
		BaseSource:      baseSource,
		CandidateSource: candidateSource,
		ComparedAt:      time.Now(),
	}
}

// SetError records the error that stopped the comparison.
func (c *Comparison) SetError(err error) {
	c.Err = err
	if err != nil {
		c.ErrorMessage = err.Error()
	}
}

// Failed reports whether the comparison stopped with an error.
func (c *Comparison) Failed() bool {
	return c.Err != nil || c.ErrorMessage != ""
}

// GateFailed reports whether a gate was evaluated and failed.
func (c *Comparison) GateFailed() bool {
	return c.Gate != nil && c.Gate.Failed
}

// Summary returns the change counts, or a zero summary before the comparison ran.
func (c *Comparison) Summary() ChangeSummary {
	if c.Report == nil {
		return ChangeSummary{}
	}
	return c.Report.Summary()
}
