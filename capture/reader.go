// Package capture decodes page-capture JSON into the model types.
//
// The capture side (a browser-driven extractor) is an external
// collaborator; this package owns only its output boundary. Decoding is
// forgiving: malformed per-node rect data is recovered as a zero-size
// rect and counted rather than failing the run, matching the rule that
// bad input data degrades a capture, never aborts it.
package capture

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/tsawler/pagecarve/model"
)

// Default page dimensions applied when the capture metadata omits them
const (
	DefaultPageWidth  = 1920.0
	DefaultPageHeight = 1080.0
)

var (
	// ErrMissingTree indicates the capture carries no dom_tree
	ErrMissingTree = errors.New("capture has no dom_tree")

	// ErrCaptureFailed indicates the capture itself reported failure
	ErrCaptureFailed = errors.New("capture reported failure")

	// ErrNotCapture indicates the input is not a capture document at all
	ErrNotCapture = errors.New("not a page capture")
)

// Open reads and decodes a page-capture file. Gzip-compressed captures
// are decompressed transparently.
func Open(filename string) (*model.PageData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening capture file: %w", err)
	}
	defer f.Close()

	return OpenReader(f)
}

// OpenReader decodes a page capture from an io.Reader. The input is
// sniffed first: gzip streams are unwrapped, and the common mix-ups
// (passing the page's HTML or its screenshot instead of the capture)
// are turned into ErrNotCapture with a pointer to the mistake.
func OpenReader(r io.Reader) (*model.PageData, error) {
	br := bufio.NewReader(r)
	prefix, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading capture: %w", err)
	}

	switch sniff(prefix) {
	case kindGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening gzip capture: %w", err)
		}
		defer zr.Close()
		return OpenReader(zr)
	case kindHTML:
		return nil, fmt.Errorf("%w: input is an HTML document; expected the capture JSON for the page", ErrNotCapture)
	case kindPNG:
		return nil, fmt.Errorf("%w: input is a PNG image; expected the capture JSON, not the screenshot", ErrNotCapture)
	case kindJSON:
	default:
		return nil, fmt.Errorf("%w: expected a JSON document", ErrNotCapture)
	}

	var raw rawCapture
	dec := json.NewDecoder(br)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding capture JSON: %w", err)
	}

	if raw.Success != nil && !*raw.Success {
		if raw.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrCaptureFailed, raw.Error)
		}
		return nil, ErrCaptureFailed
	}
	if raw.DOMTree == nil {
		return nil, ErrMissingTree
	}

	page := model.NewPageData()
	page.RawHTML = raw.RawHTML
	page.Screenshot = raw.Screenshot
	page.Assets = raw.Assets
	page.CSSData = raw.CSSData
	page.Metadata = buildMetadata(&raw)

	malformed := 0
	flatten(page.Tree, raw.DOMTree, model.NoNode, &malformed)
	page.MalformedNodes = malformed

	applyDimensionDefaults(page)

	return page, nil
}

// rawCapture mirrors the capture JSON document. Absent success is
// treated as success; older captures predate the flag.
type rawCapture struct {
	Success     *bool          `json:"success"`
	URL         string         `json:"url"`
	Title       string         `json:"title"`
	ExtractedAt string         `json:"extracted_at"`
	Error       string         `json:"error"`
	Metadata    *rawMetadata   `json:"metadata"`
	DOMTree     *rawNode       `json:"dom_tree"`
	RawHTML     string         `json:"raw_html"`
	Screenshot  string         `json:"screenshot"`
	Assets      map[string]any `json:"assets"`
	CSSData     map[string]any `json:"css_data"`
}

type rawMetadata struct {
	URL            string  `json:"url"`
	Title          string  `json:"title"`
	PageWidth      float64 `json:"page_width"`
	PageHeight     float64 `json:"page_height"`
	ViewportWidth  int     `json:"viewport_width"`
	ViewportHeight int     `json:"viewport_height"`
	TotalElements  int     `json:"total_elements"`
	MaxDepth       int     `json:"max_depth"`
	LoadTimeMS     int64   `json:"load_time_ms"`
}

// rawNode mirrors one captured DOM node. Rect stays raw so a single
// malformed rect can be recovered without failing the whole decode.
type rawNode struct {
	Tag             string            `json:"tag"`
	ID              string            `json:"id"`
	Classes         []string          `json:"classes"`
	Rect            json.RawMessage   `json:"rect"`
	Styles          map[string]string `json:"styles"`
	Attributes      map[string]string `json:"attributes"`
	TextContent     string            `json:"text_content"`
	InnerHTMLLength int               `json:"inner_html_length"`
	IsVisible       bool              `json:"is_visible"`
	IsInteractive   bool              `json:"is_interactive"`
	XPath           string            `json:"xpath"`
	Children        []rawNode         `json:"children"`
}

func buildMetadata(raw *rawCapture) model.Metadata {
	meta := model.Metadata{
		URL:         raw.URL,
		Title:       raw.Title,
		ExtractedAt: raw.ExtractedAt,
	}
	if raw.Metadata != nil {
		m := raw.Metadata
		if m.URL != "" {
			meta.URL = m.URL
		}
		if m.Title != "" {
			meta.Title = m.Title
		}
		meta.PageWidth = m.PageWidth
		meta.PageHeight = m.PageHeight
		meta.ViewportWidth = m.ViewportWidth
		meta.ViewportHeight = m.ViewportHeight
		meta.TotalElements = m.TotalElements
		meta.MaxDepth = m.MaxDepth
		meta.LoadTimeMS = m.LoadTimeMS
	}
	return meta
}

// flatten appends the raw node and its subtree to the arena in
// depth-first document order and returns the assigned NodeID.
func flatten(t *model.Tree, raw *rawNode, parent model.NodeID, malformed *int) model.NodeID {
	rect, ok := decodeRect(raw.Rect)
	if !ok {
		*malformed++
	}

	id := model.NodeID(len(t.Nodes))
	t.Nodes = append(t.Nodes, model.Node{
		Tag:         strings.ToLower(raw.Tag),
		ID:          raw.ID,
		Classes:     raw.Classes,
		Rect:        rect,
		Styles:      raw.Styles,
		Attributes:  raw.Attributes,
		Text:        raw.TextContent,
		ContentSize: raw.InnerHTMLLength,
		Visible:     raw.IsVisible,
		Interactive: raw.IsInteractive,
		XPath:       raw.XPath,
		Parent:      parent,
	})

	if len(raw.Children) > 0 {
		children := make([]model.NodeID, 0, len(raw.Children))
		for i := range raw.Children {
			children = append(children, flatten(t, &raw.Children[i], id, malformed))
		}
		// Indexed assignment: the append above may have moved the arena
		t.Nodes[id].Children = children
	}

	return id
}

// decodeRect decodes a captured rect, recovering malformed data as a
// zero-size rect. Zero-size rects are legitimate (hidden elements);
// only undecodable or non-finite data counts as malformed.
func decodeRect(raw json.RawMessage) (model.Rect, bool) {
	if len(raw) == 0 {
		return model.Rect{}, false
	}

	var r model.Rect
	if err := json.Unmarshal(raw, &r); err != nil {
		return model.Rect{}, false
	}

	for _, v := range [4]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return model.Rect{}, false
		}
	}
	if r.Width < 0 || r.Height < 0 {
		return model.Rect{}, false
	}

	return r, true
}

// applyDimensionDefaults fills in missing page dimensions: first from
// the root node's rect, then from the standard capture viewport.
func applyDimensionDefaults(page *model.PageData) {
	root := page.Root()

	if page.Metadata.PageWidth <= 0 {
		if root != nil && root.Rect.Width > 0 {
			page.Metadata.PageWidth = root.Rect.Width
		} else {
			page.Metadata.PageWidth = DefaultPageWidth
		}
	}
	if page.Metadata.PageHeight <= 0 {
		if root != nil && root.Rect.Height > 0 {
			page.Metadata.PageHeight = root.Rect.Height
		} else {
			page.Metadata.PageHeight = DefaultPageHeight
		}
	}
}
