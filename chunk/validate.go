package chunk

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvariantViolation reports that the final section set failed validation:
// residual overlap above the threshold or duplicate band boundaries. It
// indicates an implementation defect rather than unusual input, and is the
// only condition callers should treat as a hard failure.
var ErrInvariantViolation = errors.New("section invariants violated")

// Report is the validation report for a chunking run
type Report struct {
	// PrinciplesMet is true when no hard errors were recorded
	PrinciplesMet bool `json:"principles_met"`

	// SectionCount is the number of final sections
	SectionCount int `json:"section_count"`

	// Errors are hard failures: residual overlap or duplicate band boundaries
	Errors []string `json:"errors"`

	// Warnings are non-fatal findings: discarded overlaps, oversized
	// sections, coverage deviation, malformed input
	Warnings []string `json:"warnings"`

	// Stats summarizes token usage across the final sections
	Stats Stats `json:"stats"`
}

// Stats summarizes token usage across the final sections
type Stats struct {
	TotalTokens         int `json:"total_tokens"`
	AvgTokensPerSection int `json:"avg_tokens_per_section"`
	MaxTokens           int `json:"max_tokens"`
	MinTokens           int `json:"min_tokens"`
}

// Err returns ErrInvariantViolation carrying the report's errors when
// validation failed, nil otherwise.
func (r *Report) Err() error {
	if r.PrinciplesMet {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvariantViolation, strings.Join(r.Errors, "; "))
}

// Validator recomputes the pipeline's invariants over the final sequence,
// assigns stable section names, and produces the validation report. This is
// the acceptance gate, not an optional check.
type Validator struct {
	config Config
}

// NewValidator creates a validator with the given configuration.
func NewValidator(config Config) *Validator {
	return &Validator{config: config}
}

// Validate freezes the candidates into named Chunks and checks mutual
// exclusivity, complete coverage, and the size bound. Residual overlap and
// duplicate band boundaries are hard errors; coverage deviation and budget
// overruns are warnings. Names are "section_<k>", 1-based in final order, and
// are the single source of truth for downstream ordering.
func (v *Validator) Validate(candidates []*Candidate, pageHeight float64) ([]Chunk, Report) {
	chunks := make([]Chunk, 0, len(candidates))
	for i, cand := range candidates {
		k := i + 1
		role := cand.Role
		if role == "" {
			role = RoleContent
		}
		chunks = append(chunks, Chunk{
			ID:              fmt.Sprintf("section-%d", k),
			Name:            fmt.Sprintf("section_%d", k),
			Type:            cand.Tag,
			Role:            role,
			Selector:        cand.Selector,
			Rect:            cand.Rect,
			EstimatedTokens: cand.Tokens,
			Oversized:       cand.Oversized,
		})
	}

	report := Report{
		SectionCount: len(chunks),
		Errors:       make([]string, 0),
		Warnings:     make([]string, 0),
	}

	// Mutual exclusivity over the final rects.
	for i := 0; i < len(chunks); i++ {
		for j := i + 1; j < len(chunks); j++ {
			area := chunks[i].Rect.OverlapArea(chunks[j].Rect)
			if area > v.config.OverlapThresholdPx2 {
				report.Errors = append(report.Errors, fmt.Sprintf(
					"%s overlaps %s: area %.0f px2 exceeds threshold %.0f",
					chunks[i].Name, chunks[j].Name, area, v.config.OverlapThresholdPx2))
			}
		}
	}

	bands := collectBands(candidates)

	// Duplicate or collapsed band boundaries.
	seen := make(map[[2]float64]int, len(bands))
	for _, b := range bands {
		if b.bottom <= b.top {
			report.Errors = append(report.Errors, fmt.Sprintf(
				"row %d band collapsed to a duplicate boundary at %.1f", b.row, b.top))
			continue
		}
		key := [2]float64{b.top, b.bottom}
		if other, ok := seen[key]; ok {
			report.Errors = append(report.Errors, fmt.Sprintf(
				"rows %d and %d share duplicate band boundaries [%.1f, %.1f)", other, b.row, b.top, b.bottom))
			continue
		}
		seen[key] = b.row
	}

	// Complete coverage within tolerance, one tolerance unit per boundary.
	var covered float64
	for _, b := range bands {
		if b.bottom > b.top {
			covered += b.bottom - b.top
		}
	}
	tolerance := v.config.CoverageTolerancePx * float64(len(bands)+1)
	if pageHeight > 0 && math.Abs(covered-pageHeight) > tolerance {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"coverage %.1f%% of page height (%.0f of %.0f px)",
			covered/pageHeight*100, covered, pageHeight))
	}

	// Size bound, excepting sections already flagged oversized.
	for _, chunk := range chunks {
		if chunk.EstimatedTokens <= v.config.MaxTokens {
			continue
		}
		if chunk.Oversized {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"%s is oversized: %d tokens over the %d budget with nothing to split",
				chunk.Name, chunk.EstimatedTokens, v.config.MaxTokens))
		} else {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"%s exceeds the %d token budget with %d tokens",
				chunk.Name, v.config.MaxTokens, chunk.EstimatedTokens))
		}
	}

	report.PrinciplesMet = len(report.Errors) == 0
	report.Stats = calculateStats(chunks)
	return chunks, report
}

// calculateStats computes token statistics over the final sections.
func calculateStats(chunks []Chunk) Stats {
	stats := Stats{
		MinTokens: -1,
	}

	for _, chunk := range chunks {
		stats.TotalTokens += chunk.EstimatedTokens

		if stats.MinTokens < 0 || chunk.EstimatedTokens < stats.MinTokens {
			stats.MinTokens = chunk.EstimatedTokens
		}
		if chunk.EstimatedTokens > stats.MaxTokens {
			stats.MaxTokens = chunk.EstimatedTokens
		}
	}

	if len(chunks) > 0 {
		stats.AvgTokensPerSection = stats.TotalTokens / len(chunks)
	}
	if stats.MinTokens < 0 {
		stats.MinTokens = 0
	}

	return stats
}
