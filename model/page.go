package model

// PageData represents one captured web page: the laid-out DOM tree plus
// the artifacts the capture produced alongside it
type PageData struct {
	Metadata Metadata
	Tree     *Tree

	// RawHTML is the full serialized page markup as captured
	RawHTML string

	// Screenshot is the full-page screenshot as base64-encoded PNG,
	// possibly carrying a "data:image/png;base64," prefix. Empty when
	// the capture ran without screenshots.
	Screenshot string

	// Assets and CSSData are opaque capture payloads passed through
	// for downstream consumers
	Assets  map[string]any
	CSSData map[string]any

	// MalformedNodes counts nodes whose rect data could not be decoded
	// and was recovered as zero-size
	MalformedNodes int
}

// Metadata contains page-level capture information
type Metadata struct {
	URL         string
	Title       string
	ExtractedAt string

	// PageWidth and PageHeight are the full scrollable document
	// dimensions in CSS pixels
	PageWidth  float64
	PageHeight float64

	// ViewportWidth and ViewportHeight are the capture viewport
	// dimensions in CSS pixels
	ViewportWidth  int
	ViewportHeight int

	TotalElements int
	MaxDepth      int
	LoadTimeMS    int64
}

// NewPageData creates an empty PageData with an empty tree
func NewPageData() *PageData {
	return &PageData{
		Tree: &Tree{},
	}
}

// Root returns the root node of the page's DOM tree, or nil for an
// empty capture
func (p *PageData) Root() *Node {
	if p == nil || p.Tree == nil {
		return nil
	}
	return p.Tree.Node(p.Tree.Root())
}

// NodeCount returns the number of captured DOM nodes
func (p *PageData) NodeCount() int {
	if p == nil {
		return 0
	}
	return p.Tree.Len()
}

// HasScreenshot reports whether the capture includes a screenshot
func (p *PageData) HasScreenshot() bool {
	return p != nil && p.Screenshot != ""
}
