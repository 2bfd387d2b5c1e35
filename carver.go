package pagecarve

import (
	"fmt"
	"log/slog"

	"github.com/tsawler/pagecarve/capture"
	"github.com/tsawler/pagecarve/chunk"
	"github.com/tsawler/pagecarve/fragment"
	"github.com/tsawler/pagecarve/model"
)

// Carver provides a fluent interface for sectioning captured web pages.
// Each configuration method returns a new Carver instance, making it
// safe for concurrent use and allowing method chaining.
type Carver struct {
	// Source
	filename string

	// Loaded capture (set directly by FromPage, or lazily from filename)
	page       *model.PageData
	pageLoaded bool

	// Configuration
	config  chunk.Config
	options carveOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Carver with deep copies of the tag
// slices. This ensures immutability - each chain method returns a new instance.
func (c *Carver) clone() *Carver {
	newCarver := &Carver{
		filename:   c.filename,
		page:       c.page,
		pageLoaded: c.pageLoaded,
		config:     cloneConfig(c.config),
		options:    c.options,
		err:        c.err,
	}
	return newCarver
}

// ensurePage loads the capture file if no page has been loaded yet.
func (c *Carver) ensurePage() error {
	if c.pageLoaded {
		return nil
	}
	if c.filename == "" {
		return fmt.Errorf("no capture file specified")
	}

	page, err := capture.Open(c.filename)
	if err != nil {
		return fmt.Errorf("failed to open capture: %w", err)
	}
	c.page = page
	c.pageLoaded = true
	return nil
}

// ============================================================================
// Configuration Methods (return new Carver instance)
// ============================================================================

// MaxTokens sets the per-section token budget. Sections over the budget are
// split along their child elements where possible.
//
// Example:
//
//	result, _, err := pagecarve.Open("capture.json").MaxTokens(20000).Chunks()
func (c *Carver) MaxTokens(n int) *Carver {
	newCarver := c.clone()
	newCarver.config.MaxTokens = n
	return newCarver
}

// MinSectionHeight sets the minimum rendered height, in CSS pixels, an
// element needs to stand as a section on its own.
//
// Example:
//
//	result, _, err := pagecarve.Open("capture.json").MinSectionHeight(80).Chunks()
func (c *Carver) MinSectionHeight(px float64) *Carver {
	newCarver := c.clone()
	newCarver.config.MinSectionHeight = px
	return newCarver
}

// MinSectionWidthRatio sets the minimum element width as a fraction of the
// page width for an element to stand as a section on its own.
//
// Example:
//
//	result, _, err := pagecarve.Open("capture.json").MinSectionWidthRatio(0.3).Chunks()
func (c *Carver) MinSectionWidthRatio(ratio float64) *Carver {
	newCarver := c.clone()
	newCarver.config.MinSectionWidthRatio = ratio
	return newCarver
}

// MinSectionTokens sets the minimum estimated token count an element needs
// to stand as a section on its own.
//
// Example:
//
//	result, _, err := pagecarve.Open("capture.json").MinSectionTokens(100).Chunks()
func (c *Carver) MinSectionTokens(n int) *Carver {
	newCarver := c.clone()
	newCarver.config.MinSectionTokens = n
	return newCarver
}

// OverlapThreshold sets the overlap area, in square pixels, above which two
// sections are considered in conflict and the lower-token one is dropped.
//
// Example:
//
//	result, _, err := pagecarve.Open("capture.json").OverlapThreshold(400).Chunks()
func (c *Carver) OverlapThreshold(px2 float64) *Carver {
	newCarver := c.clone()
	newCarver.config.OverlapThresholdPx2 = px2
	return newCarver
}

// CoverageTolerance sets the per-boundary slack, in CSS pixels, allowed
// before the validator warns about incomplete page coverage.
//
// Example:
//
//	result, _, err := pagecarve.Open("capture.json").CoverageTolerance(2).Chunks()
func (c *Carver) CoverageTolerance(px float64) *Carver {
	newCarver := c.clone()
	newCarver.config.CoverageTolerancePx = px
	return newCarver
}

// SkipTags adds tags whose subtrees are excluded from sectioning entirely.
// Multiple calls are cumulative.
//
// Example:
//
//	result, _, err := pagecarve.Open("capture.json").SkipTags("iframe", "canvas").Chunks()
func (c *Carver) SkipTags(tags ...string) *Carver {
	newCarver := c.clone()
	newCarver.config.SkipTags = append(newCarver.config.SkipTags, tags...)
	return newCarver
}

// ContainerTags adds tags treated as structural wrappers to traverse into
// rather than take as sections themselves. Multiple calls are cumulative.
//
// Example:
//
//	result, _, err := pagecarve.Open("capture.json").ContainerTags("form").Chunks()
func (c *Carver) ContainerTags(tags ...string) *Carver {
	newCarver := c.clone()
	newCarver.config.ContainerTags = append(newCarver.config.ContainerTags, tags...)
	return newCarver
}

// WithConfig replaces the entire pipeline configuration. Use this when
// several thresholds change at once, or to start from chunk.DefaultConfig
// and adjust.
//
// Example:
//
//	config := chunk.DefaultConfig()
//	config.MaxTokens = 10000
//	result, _, err := pagecarve.Open("capture.json").WithConfig(config).Chunks()
func (c *Carver) WithConfig(config chunk.Config) *Carver {
	newCarver := c.clone()
	newCarver.config = cloneConfig(config)
	return newCarver
}

// WithLogger directs pipeline progress and overlap discard records to the
// given logger. By default all pipeline output is discarded.
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	result, _, err := pagecarve.Open("capture.json").WithLogger(logger).Chunks()
func (c *Carver) WithLogger(logger *slog.Logger) *Carver {
	newCarver := c.clone()
	newCarver.config.Logger = logger
	return newCarver
}

// WithoutPayloads skips filling section HTML, image, and link payloads,
// producing geometry-only sections. Useful when only the section boundaries
// and the report matter.
//
// Example:
//
//	result, _, err := pagecarve.Open("capture.json").WithoutPayloads().Chunks()
func (c *Carver) WithoutPayloads() *Carver {
	newCarver := c.clone()
	newCarver.options.attachPayloads = false
	return newCarver
}

// WithoutStyles skips attaching the page-level style summary to sections.
//
// Example:
//
//	result, _, err := pagecarve.Open("capture.json").WithoutStyles().Chunks()
func (c *Carver) WithoutStyles() *Carver {
	newCarver := c.clone()
	newCarver.options.attachStyles = false
	return newCarver
}

// TopStyles caps each map in the attached style summary at its limit most
// frequent values, keeping section output compact on style-heavy pages.
//
// Example:
//
//	result, _, err := pagecarve.Open("capture.json").TopStyles(10).Chunks()
func (c *Carver) TopStyles(limit int) *Carver {
	newCarver := c.clone()
	newCarver.options.attachStyles = true
	newCarver.options.styleLimit = limit
	return newCarver
}

// ============================================================================
// Terminal Operations (run the pipeline and return results)
// ============================================================================

// Chunks runs the sectioning pipeline and returns the full result: the
// final sections in reading order plus the validation report.
//
// Returns the result, any warnings encountered during processing, and an
// error if the run failed. Warnings indicate non-fatal issues (discarded
// overlaps, incomplete coverage, oversized sections) where sectioning
// succeeded but results may be imperfect. When the section set violates a
// hard invariant the result is still returned alongside
// chunk.ErrInvariantViolation so the report can be inspected.
//
// Example:
//
//	result, warnings, err := pagecarve.Open("capture.json").Chunks()
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pagecarve.FormatWarnings(warnings))
//	}
func (c *Carver) Chunks() (*chunk.Result, []Warning, error) {
	if c.err != nil {
		return nil, nil, c.err
	}

	if err := c.ensurePage(); err != nil {
		return nil, nil, err
	}

	result, err := chunk.NewChunkerWithConfig(c.config).Chunk(c.page)
	if err != nil {
		return nil, nil, err
	}

	warnings := c.attachPayloads(result)
	warnings = append(warnings, warningsFromReport(&result.Report)...)

	return result, warnings, result.Report.Err()
}

// Sections runs the sectioning pipeline and returns just the final
// sections. See Chunks for the full result including the validation report.
//
// Example:
//
//	sections, warnings, err := pagecarve.Open("capture.json").Sections()
func (c *Carver) Sections() ([]chunk.Chunk, []Warning, error) {
	result, warnings, err := c.Chunks()
	if result == nil {
		return nil, warnings, err
	}
	return result.Chunks, warnings, err
}

// Report runs the sectioning pipeline and returns only the validation
// report. Invariant violations are recorded inside the report rather than
// returned as an error; the error return covers load and pipeline failures
// only.
//
// Example:
//
//	report, err := pagecarve.Open("capture.json").Report()
//	if err == nil && !report.PrinciplesMet {
//	    log.Println("validation failed:", report.Errors)
//	}
func (c *Carver) Report() (*chunk.Report, error) {
	result, _, err := c.Chunks()
	if result == nil {
		return nil, err
	}
	return &result.Report, nil
}

// Page loads and returns the underlying captured page without running the
// pipeline. Further operations on the Carver remain valid.
//
// Example:
//
//	page, err := pagecarve.Open("capture.json").Page()
func (c *Carver) Page() (*model.PageData, error) {
	if c.err != nil {
		return nil, c.err
	}
	if err := c.ensurePage(); err != nil {
		return nil, err
	}
	return c.page, nil
}

// ============================================================================
// Internal helpers
// ============================================================================

// attachPayloads fills each section's HTML payload and asset references
// from the captured markup and attaches the page-level style summary,
// subject to the facade options.
func (c *Carver) attachPayloads(result *chunk.Result) []Warning {
	var warnings []Warning

	if c.options.attachPayloads && c.page.RawHTML != "" {
		extractor, err := fragment.New(c.page.RawHTML)
		if err != nil {
			warnings = append(warnings, Warning{
				Code:    WarningPayload,
				Message: fmt.Sprintf("section payloads unavailable: %v", err),
			})
		} else {
			extractor.Apply(result.Chunks)
		}
	}

	if c.options.attachStyles {
		summary := model.SummarizeStyles(c.page.Tree)
		if c.options.styleLimit > 0 {
			summary = summary.Top(c.options.styleLimit)
		}
		if !summary.Empty() {
			for i := range result.Chunks {
				result.Chunks[i].Styles = summary
			}
		}
	}

	return warnings
}
