package model

import (
	"strings"
	"unicode"
)

// NodeID identifies a node within a Tree. IDs are arena indices assigned
// in depth-first document order, so the root is always 0 in a non-empty
// tree and a parent's ID is always smaller than its descendants' IDs.
type NodeID int

// NoNode is the sentinel value for an absent node reference.
const NoNode NodeID = -1

// Node is a single laid-out element captured from a page's DOM.
// Nodes are value records inside a Tree arena; they reference their
// parent and children by NodeID rather than by pointer, and the tree is
// never modified once built.
type Node struct {
	// Tag is the lowercased element name (e.g. "div", "p", "img")
	Tag string

	// ID is the element's id attribute, empty if absent
	ID string

	// Classes holds the element's class list in source order
	Classes []string

	// Rect is the element's layout box in page pixel coordinates.
	// Malformed captures are recovered as a zero-size Rect.
	Rect Rect

	// Styles is the captured computed-style snapshot, keyed by
	// snake_case property name
	Styles map[string]string

	// Attributes holds captured element attributes other than id/class
	Attributes map[string]string

	// Text is the element's own visible text content
	Text string

	// ContentSize is the length in characters of the element's
	// serialized inner HTML, covering the whole subtree
	ContentSize int

	// Visible reports whether the capture judged the element rendered
	Visible bool

	// Interactive reports whether the element is an interaction target
	// (link, button, form control)
	Interactive bool

	// XPath is the capture-supplied absolute XPath locator
	XPath string

	// Parent is the arena index of the parent node, NoNode for the root
	Parent NodeID

	// Children are the arena indices of child nodes in document order
	Children []NodeID
}

// Selector returns a human-readable CSS-like locator for the node:
// "#id" when the node has an id, otherwise "tag.class" using the first
// class that does not start with a digit or a dash, otherwise the bare
// tag name. The selector is provenance for debugging and payload
// extraction; the chunking algorithm never interprets it.
func (n *Node) Selector() string {
	if n == nil {
		return ""
	}
	if n.ID != "" {
		return "#" + n.ID
	}
	for _, class := range n.Classes {
		if usableClass(class) {
			return n.Tag + "." + class
		}
	}
	return n.Tag
}

// usableClass reports whether a class name is stable enough to serve as
// a selector component. Generated classes often start with digits or
// dashes and are rejected.
func usableClass(class string) bool {
	if class == "" {
		return false
	}
	first := rune(class[0])
	if unicode.IsDigit(first) || first == '-' {
		return false
	}
	return !strings.ContainsAny(class, " \t\n")
}

// Tree stores a captured DOM as a flat arena of nodes. The zero value
// is an empty tree.
type Tree struct {
	Nodes []Node
}

// Len returns the number of nodes in the tree
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Nodes)
}

// Root returns the root NodeID, or NoNode for an empty tree
func (t *Tree) Root() NodeID {
	if t.Len() == 0 {
		return NoNode
	}
	return 0
}

// Node returns the node for the given ID, or nil if the ID is out of
// range. The returned pointer aliases the arena; callers must treat it
// as read-only.
func (t *Tree) Node(id NodeID) *Node {
	if t == nil || id < 0 || int(id) >= len(t.Nodes) {
		return nil
	}
	return &t.Nodes[id]
}

// Children returns the child IDs of the given node in document order
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	return n.Children
}

// FindByTag returns the first node in document order with the given
// tag, or NoNode if absent
func (t *Tree) FindByTag(tag string) NodeID {
	if t == nil {
		return NoNode
	}
	for i := range t.Nodes {
		if t.Nodes[i].Tag == tag {
			return NodeID(i)
		}
	}
	return NoNode
}

// Walk visits nodes depth-first in document order starting at id,
// calling fn for each. Returning false from fn prunes the subtree
// below that node.
func (t *Tree) Walk(id NodeID, fn func(NodeID, *Node) bool) {
	n := t.Node(id)
	if n == nil {
		return
	}
	if !fn(id, n) {
		return
	}
	for _, child := range n.Children {
		t.Walk(child, fn)
	}
}

// Depth returns the number of ancestors of the given node; the root
// has depth 0. Returns -1 for an invalid ID.
func (t *Tree) Depth(id NodeID) int {
	n := t.Node(id)
	if n == nil {
		return -1
	}
	depth := 0
	for n.Parent != NoNode {
		n = t.Node(n.Parent)
		if n == nil {
			return -1
		}
		depth++
	}
	return depth
}
