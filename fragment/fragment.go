// Package fragment extracts section HTML payloads from a captured page.
package fragment

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/pagecarve/chunk"
)

// maxRefs caps the image and link lists collected per fragment.
const maxRefs = 20

// Extractor locates section elements in a page's raw HTML and renders their
// fragments. The page is parsed once and all lookups share the tree, so the
// rendered fragments are balanced regardless of how the capture serialized
// the markup.
type Extractor struct {
	doc *html.Node
}

// New parses the captured page HTML. An empty or partial document is not an
// error; sections that cannot be located simply produce empty payloads.
func New(rawHTML string) (*Extractor, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing page HTML: %w", err)
	}
	return &Extractor{doc: doc}, nil
}

// Payload is the extracted content of one section.
type Payload struct {
	// HTML is the rendered subtree of the section's element.
	HTML string

	// Images are the <img> references inside the fragment, document order,
	// capped at 20.
	Images []chunk.ImageRef

	// Links are the <a href> references inside the fragment, document
	// order, capped at 20.
	Links []chunk.LinkRef
}

// Extract renders the fragment for a section selector. The selector forms
// match what the pipeline generates: "#id", "tag.class", or a bare tag. A
// selector that matches nothing yields an empty payload.
func (e *Extractor) Extract(selector string) Payload {
	n := e.find(selector)
	if n == nil {
		return Payload{}
	}
	return Payload{
		HTML:   renderHTML(n),
		Images: collectImages(n),
		Links:  collectLinks(n),
	}
}

// Text returns the visible text of the section's element with whitespace
// collapsed, or "" when the selector matches nothing. This is the reference
// text for OCR verification.
func (e *Extractor) Text(selector string) string {
	n := e.find(selector)
	if n == nil {
		return ""
	}
	return textContent(n)
}

// Apply fills the payload fields of each section in place using its
// selector.
func (e *Extractor) Apply(chunks []chunk.Chunk) {
	for i := range chunks {
		p := e.Extract(chunks[i].Selector)
		chunks[i].HTML = p.HTML
		chunks[i].Images = p.Images
		chunks[i].Links = p.Links
	}
}

// find resolves a selector to the first matching element in document order.
func (e *Extractor) find(selector string) *html.Node {
	if e.doc == nil || selector == "" {
		return nil
	}
	if id, ok := strings.CutPrefix(selector, "#"); ok {
		return findByID(e.doc, id)
	}
	if tag, class, ok := strings.Cut(selector, "."); ok {
		return findByTagClass(e.doc, tag, class)
	}
	return findByTag(e.doc, selector)
}

// walk visits n and its descendants in document order until fn returns
// false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func findByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

func findByTagClass(root *html.Node, tag, class string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == tag && hasClass(n, class) {
			found = n
			return false
		}
		return true
	})
	return found
}

func findByTag(root *html.Node, tag string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == tag {
			found = n
			return false
		}
		return true
	})
	return found
}

// renderHTML serializes the subtree rooted at n.
func renderHTML(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// collectImages gathers <img> references with a src, in document order.
func collectImages(root *html.Node) []chunk.ImageRef {
	var images []chunk.ImageRef
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "img" {
			if src := attr(n, "src"); src != "" {
				images = append(images, chunk.ImageRef{Src: src, Alt: attr(n, "alt")})
			}
		}
		return len(images) < maxRefs
	})
	return images
}

// collectLinks gathers <a> references with an href, in document order.
func collectLinks(root *html.Node) []chunk.LinkRef {
	var links []chunk.LinkRef
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := attr(n, "href"); href != "" {
				links = append(links, chunk.LinkRef{Href: href, Text: textContent(n)})
			}
		}
		return len(links) < maxRefs
	})
	return links
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// hasClass reports whether the element's class list contains class.
func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

// textContent extracts the visible text of a subtree with whitespace
// collapsed.
func textContent(root *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(root)
	return strings.Join(strings.Fields(b.String()), " ")
}
