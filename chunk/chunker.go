package chunk

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/tsawler/pagecarve/model"
)

// Candidate is a provisional section moving through the pipeline. Candidates
// are created by the normalizer and splitter, refined in place by the later
// stages (only the vertical boundaries of Rect change), and frozen into Chunks
// by the validator.
type Candidate struct {
	// Node is the arena index of the source element, or model.NoNode when the
	// candidate did not come from an element tree.
	Node model.NodeID

	// Tag is the source element's tag.
	Tag string

	// Selector is a human-readable locator for provenance ("#id", "tag.class",
	// or a bare tag). Opaque to the pipeline.
	Selector string

	// Role is the classified page region of the source element.
	Role string

	// Rect is the candidate's bounding box in page pixel coordinates.
	Rect model.Rect

	// Tokens is the estimated processing cost of the candidate's content.
	Tokens int

	// Oversized marks a candidate that exceeds the token budget but has no
	// children to split into.
	Oversized bool

	// Row is the reading-order row assigned by the row grouper.
	Row int
}

// Chunk is a finalized, validated, named section emitted to downstream
// consumers.
type Chunk struct {
	// ID is a unique identifier for this section (e.g. "section-3").
	ID string `json:"id"`

	// Name is the stable downstream name, "section_<k>" with k 1-based in
	// final reading order. Consumers must not re-sort.
	Name string `json:"name"`

	// Type is the source element's tag.
	Type string `json:"type"`

	// Role is the classified page region: header, navigation, content,
	// sidebar, or footer.
	Role string `json:"role,omitempty"`

	// Selector locates the source element for provenance and debugging.
	Selector string `json:"selector"`

	// Rect is the final bounding box after boundary adjustment.
	Rect model.Rect `json:"rect"`

	// EstimatedTokens is the content-size estimate used for budget
	// enforcement.
	EstimatedTokens int `json:"estimated_tokens"`

	// Oversized indicates the section exceeds the budget but could not be
	// subdivided further.
	Oversized bool `json:"oversized,omitempty"`

	// HTML is the section's markup fragment, filled in by the caller.
	HTML string `json:"html,omitempty"`

	// Styles is the page-level style summary attached for downstream context.
	Styles *model.StyleSummary `json:"styles,omitempty"`

	// Images are the image references found in the section's fragment.
	Images []ImageRef `json:"images,omitempty"`

	// Links are the hyperlink references found in the section's fragment.
	Links []LinkRef `json:"links,omitempty"`
}

// ImageRef identifies an image inside a section's fragment.
type ImageRef struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// LinkRef identifies a hyperlink inside a section's fragment.
type LinkRef struct {
	Href string `json:"href"`
	Text string `json:"text,omitempty"`
}

// Config holds configuration options for the chunking pipeline
type Config struct {
	// MaxTokens is the size budget per section in estimated tokens
	// Default: 50000
	MaxTokens int

	// MinSectionHeight is the minimum height in pixels for a standalone section
	// Default: 50
	MinSectionHeight float64

	// MinSectionWidthRatio is the minimum width for a standalone section as a
	// fraction of the page width
	// Default: 0.2
	MinSectionWidthRatio float64

	// MinSectionTokens is the minimum estimated tokens for a standalone section
	// Default: 50
	MinSectionTokens int

	// OverlapThresholdPx2 is the largest tolerated overlap area between two
	// sections, in square pixels
	// Default: 100
	OverlapThresholdPx2 float64

	// CoverageTolerancePx is the permitted coverage deviation per band
	// boundary before a coverage warning is raised
	// Default: 1.0
	CoverageTolerancePx float64

	// TokenDivisor converts serialized content length to estimated tokens
	// Default: 4
	TokenDivisor int

	// ContainerTags are structural wrapper tags that are traversed into rather
	// than taken as sections themselves
	// Default: html, body, main, div, section, article
	ContainerTags []string

	// SkipTags are non-visual tags excluded entirely, subtrees included
	// Default: script, style, head, meta, link, noscript, template, svg, path, br, hr
	SkipTags []string

	// Logger receives stage progress and overlap discard records
	// Default: nil (all output discarded)
	Logger *slog.Logger
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		MaxTokens:            50000,
		MinSectionHeight:     50,
		MinSectionWidthRatio: 0.2,
		MinSectionTokens:     50,
		OverlapThresholdPx2:  100,
		CoverageTolerancePx:  1.0,
		TokenDivisor:         4,
		ContainerTags:        []string{"html", "body", "main", "div", "section", "article"},
		SkipTags:             []string{"script", "style", "head", "meta", "link", "noscript", "template", "svg", "path", "br", "hr"},
	}
}

// tokens estimates the processing cost of one element from the length of its
// serialized content.
func (c Config) tokens(node *model.Node) int {
	div := c.TokenDivisor
	if div <= 0 {
		div = 4
	}
	return node.ContentSize / div
}

// isContainer reports whether a tag is a structural wrapper.
func (c Config) isContainer(tag string) bool {
	for _, t := range c.ContainerTags {
		if t == tag {
			return true
		}
	}
	return false
}

// isSkip reports whether a tag is non-visual.
func (c Config) isSkip(tag string) bool {
	for _, t := range c.SkipTags {
		if t == tag {
			return true
		}
	}
	return false
}

// logger returns the configured logger, or one that discards everything.
func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Chunker runs the full pipeline over a captured page
type Chunker struct {
	config Config
}

// NewChunker creates a new chunker with default configuration
func NewChunker() *Chunker {
	return &Chunker{
		config: DefaultConfig(),
	}
}

// NewChunkerWithConfig creates a chunker with custom configuration
func NewChunkerWithConfig(config Config) *Chunker {
	return &Chunker{
		config: config,
	}
}

// Result contains the chunking output
type Result struct {
	// Chunks are the final sections in reading order
	Chunks []Chunk

	// Report is the validation report for the run
	Report Report
}

// Chunk processes a captured page and returns its sections with a validation
// report. The pipeline always produces a best-effort section set; hard
// failures are recorded in the report rather than returned as errors, and the
// only error conditions here are a nil or empty page.
func (c *Chunker) Chunk(page *model.PageData) (*Result, error) {
	if page == nil {
		return nil, fmt.Errorf("page is nil")
	}
	if page.Tree == nil || page.Tree.Len() == 0 {
		return nil, fmt.Errorf("page has no element tree")
	}

	pageWidth := page.Metadata.PageWidth
	pageHeight := page.Metadata.PageHeight
	log := c.config.logger()

	candidates := NewNormalizer(c.config).Normalize(page.Tree, pageWidth)
	log.Debug("normalized element tree", "nodes", page.Tree.Len(), "candidates", len(candidates))

	result, err := c.ChunkCandidates(candidates, page.Tree, pageWidth, pageHeight)
	if err != nil {
		return nil, err
	}

	if page.MalformedNodes > 0 {
		malformed := fmt.Sprintf("%d malformed nodes recovered with zero-size rects and excluded from candidacy", page.MalformedNodes)
		result.Report.Warnings = append([]string{malformed}, result.Report.Warnings...)
	}

	return result, nil
}

// ChunkCandidates runs the pipeline from the size splitter onward over an
// explicit candidate list. The tree may be nil, in which case over-budget
// candidates cannot be split into children and are flagged oversized. Running
// an already-valid section set through this reproduces it unchanged.
func (c *Chunker) ChunkCandidates(candidates []*Candidate, tree *model.Tree, pageWidth, pageHeight float64) (*Result, error) {
	log := c.config.logger()

	candidates = NewSplitter(c.config).Split(candidates, tree, pageWidth)
	log.Debug("applied size budget", "candidates", len(candidates))

	candidates = NewRowGrouper(c.config).Group(candidates)

	candidates, discards := NewOverlapResolver(c.config).Resolve(candidates)
	if len(discards) > 0 {
		log.Debug("resolved overlaps", "discarded", len(discards), "surviving", len(candidates))
	}

	candidates = NewGapFiller(c.config).Fill(candidates, pageHeight)

	chunks, report := NewValidator(c.config).Validate(candidates, pageHeight)

	// Discards precede the validator's own findings in the report.
	if len(discards) > 0 {
		warnings := make([]string, 0, len(discards)+len(report.Warnings))
		for _, d := range discards {
			warnings = append(warnings, d.String())
		}
		report.Warnings = append(warnings, report.Warnings...)
	}

	return &Result{Chunks: chunks, Report: report}, nil
}

// Helper functions

// newCandidate builds the working record for one element.
func newCandidate(config Config, tree *model.Tree, id model.NodeID) *Candidate {
	node := tree.Node(id)
	return &Candidate{
		Node:     id,
		Tag:      node.Tag,
		Selector: node.Selector(),
		Role:     classifyRole(tree, id),
		Rect:     node.Rect,
		Tokens:   config.tokens(node),
	}
}

// qualifies reports whether an element can stand as a section on its own: tall
// enough, wide enough relative to the page, and carrying enough content.
func qualifies(config Config, node *model.Node, pageWidth float64) bool {
	if node == nil || node.Rect.IsEmpty() {
		return false
	}
	return node.Rect.Height >= config.MinSectionHeight &&
		node.Rect.Width >= config.MinSectionWidthRatio*pageWidth &&
		config.tokens(node) >= config.MinSectionTokens
}

// verticalGap returns the vertical distance between two rects, zero when they
// overlap vertically.
func verticalGap(a, b model.Rect) float64 {
	switch {
	case a.Bottom() <= b.Top():
		return b.Top() - a.Bottom()
	case b.Bottom() <= a.Top():
		return a.Top() - b.Bottom()
	default:
		return 0
	}
}
