// Package chunk implements the section chunking pipeline: it turns a captured
// page's element tree into an ordered sequence of non-overlapping,
// page-covering, size-bounded sections suitable for independent downstream
// processing.
//
// # The Pipeline
//
// Chunking runs six stages, each consuming the previous stage's output. Data
// flows strictly forward and every stage is deterministic, so the same page
// and configuration always produce the same sections.
//
//  1. [Normalizer] prunes non-visual elements, traverses structural
//     containers, and merges elements below the minimum section size into
//     their siblings, yielding the initial candidate list.
//  2. [Splitter] recursively breaks candidates over the token budget into
//     their children in document order, flagging those that cannot be
//     subdivided as oversized.
//  3. [RowGrouper] groups side-by-side candidates into rows and flattens them
//     into top-to-bottom, left-to-right reading order.
//  4. [OverlapResolver] eliminates pairs whose overlap area exceeds the
//     threshold, keeping the higher-token candidate, iterating to a fixed
//     point.
//  5. [GapFiller] adjusts row-band boundaries so the bands tile the page
//     height exactly.
//  6. [Validator] recomputes the invariants, assigns final "section_<k>"
//     names, and produces the validation [Report].
//
// # Principles
//
// The final sections satisfy three simultaneous principles: mutual
// exclusivity (no pair overlaps beyond the threshold), complete coverage
// (the row bands tile the page height within tolerance), and size control
// (every section fits the token budget unless flagged oversized). The
// validator is the acceptance gate: residual overlap or duplicate band
// boundaries mean an implementation defect and surface through
// [Report.Err] as [ErrInvariantViolation]. Everything else is a warning,
// and the pipeline always returns a best-effort section set.
//
// # Usage
//
// Basic usage:
//
//	page, err := capture.Open("capture.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := chunk.NewChunker().Chunk(page)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, section := range result.Chunks {
//		fmt.Println(section.Name, section.Rect, section.EstimatedTokens)
//	}
//
// With options:
//
//	config := chunk.DefaultConfig()
//	config.MaxTokens = 20000
//	config.Logger = slog.Default()
//
//	result, err := chunk.NewChunkerWithConfig(config).Chunk(page)
//
// Results can be written out as one document with [Exporter] or as one file
// per section plus the validation report with [BatchExporter].
package chunk
