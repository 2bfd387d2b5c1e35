package pagecarve

import (
	"strings"

	"github.com/tsawler/pagecarve/chunk"
)

// Warning codes attached to non-fatal findings.
const (
	// WarningMalformedInput flags capture nodes whose geometry could not
	// be decoded.
	WarningMalformedInput = "malformed-input"

	// WarningOverlapDiscard flags sections dropped to resolve a spatial
	// conflict.
	WarningOverlapDiscard = "overlap-discard"

	// WarningCoverage flags section sets that leave part of the page
	// height uncovered.
	WarningCoverage = "coverage"

	// WarningSectionSize flags sections exceeding the token budget.
	WarningSectionSize = "section-size"

	// WarningPayload flags sections whose HTML payload could not be
	// populated.
	WarningPayload = "payload"

	// WarningValidation covers any other validator finding.
	WarningValidation = "validation"
)

// Warning describes a non-fatal issue found while carving a page. The run
// succeeded but the results may be imperfect.
type Warning struct {
	// Code identifies the warning category (see the Warning constants).
	Code string

	// Message is the human-readable description.
	Message string
}

// String returns the warning as "code: message".
func (w Warning) String() string {
	return w.Code + ": " + w.Message
}

// FormatWarnings joins warnings into a single string for logging.
//
// Example:
//
//	_, warnings, _ := pagecarve.Open("capture.json").Chunks()
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pagecarve.FormatWarnings(warnings))
//	}
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}

// warningsFromReport converts the report's warning strings into coded
// warnings, classifying each by its message shape.
func warningsFromReport(r *chunk.Report) []Warning {
	if len(r.Warnings) == 0 {
		return nil
	}
	warnings := make([]Warning, 0, len(r.Warnings))
	for _, message := range r.Warnings {
		warnings = append(warnings, Warning{
			Code:    classifyWarning(message),
			Message: message,
		})
	}
	return warnings
}

func classifyWarning(message string) string {
	switch {
	case strings.Contains(message, "malformed nodes"):
		return WarningMalformedInput
	case strings.HasPrefix(message, "discarded"):
		return WarningOverlapDiscard
	case strings.HasPrefix(message, "coverage"):
		return WarningCoverage
	case strings.Contains(message, "oversized"), strings.Contains(message, "token budget"):
		return WarningSectionSize
	default:
		return WarningValidation
	}
}
