// Package diagnostics turns runtime samples (heap, frame bounds, flush
// latency, estimated current) into coded findings.
package diagnostics

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Diagnostic is one finding. Code is stable and meant for grepping logs.
type Diagnostic struct {
	Severity       Severity
	Code           string
	Summary        string
	LikelyCauses   []string
	SuggestedFixes []string
	Evidence       map[string]any
}
