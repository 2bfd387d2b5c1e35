package chunk

import (
	"regexp"
	"strings"

	"github.com/tsawler/pagecarve/model"
)

// Section roles produced by region classification. The role is provenance for
// downstream consumers; the pipeline itself never branches on it.
const (
	RoleHeader     = "header"
	RoleNavigation = "navigation"
	RoleContent    = "content"
	RoleSidebar    = "sidebar"
	RoleFooter     = "footer"
)

// regionPatterns matches class and id values that conventionally mark page
// regions. Word-boundary matching keeps "navigate" from matching "nav".
var regionPatterns = struct {
	navigation *regexp.Regexp
	header     *regexp.Regexp
	footer     *regexp.Regexp
	sidebar    *regexp.Regexp
}{
	navigation: regexp.MustCompile(`(?i)(^|[^a-z])(nav|navbar|navigation|menu|topnav|sidenav|breadcrumb|breadcrumbs)([^a-z]|$)`),
	header:     regexp.MustCompile(`(?i)(^|[^a-z])(site-header|page-header|masthead|banner)([^a-z]|$)`),
	footer:     regexp.MustCompile(`(?i)(^|[^a-z])(footer|site-footer|page-footer|colophon)([^a-z]|$)`),
	sidebar:    regexp.MustCompile(`(?i)(^|[^a-z])(sidebar|widget-area|widget|aside)([^a-z]|$)`),
}

// structuralTags are neutral wrappers that do not scope a header or footer to
// a subdocument. A <header> whose ancestors are all structural belongs to the
// page; one inside an <article> belongs to the article.
var structuralTags = map[string]bool{
	"html": true,
	"body": true,
	"main": true,
	"div":  true,
}

// classifyRole determines the page region a node belongs to from its tag, its
// ARIA role, its class and id naming, and as a last resort its link density.
// Returns RoleContent when nothing marks the node as a distinct region.
func classifyRole(tree *model.Tree, id model.NodeID) string {
	node := tree.Node(id)
	if node == nil {
		return RoleContent
	}

	// Semantic elements are unambiguous wherever they sit.
	switch node.Tag {
	case "nav":
		return RoleNavigation
	case "aside":
		return RoleSidebar
	}

	// ARIA roles. Banner and contentinfo count only at the top of the page.
	switch node.Attributes["role"] {
	case "navigation":
		return RoleNavigation
	case "complementary":
		return RoleSidebar
	case "banner":
		if structurallyTop(tree, id) {
			return RoleHeader
		}
	case "contentinfo":
		if structurallyTop(tree, id) {
			return RoleFooter
		}
	}

	switch node.Tag {
	case "header":
		if structurallyTop(tree, id) {
			return RoleHeader
		}
	case "footer":
		if structurallyTop(tree, id) {
			return RoleFooter
		}
	}

	// Class and id naming conventions.
	names := node.ID
	if len(node.Classes) > 0 {
		names += " " + strings.Join(node.Classes, " ")
	}
	if names != "" {
		switch {
		case regionPatterns.navigation.MatchString(names):
			return RoleNavigation
		case regionPatterns.header.MatchString(names):
			return RoleHeader
		case regionPatterns.footer.MatchString(names):
			return RoleFooter
		case regionPatterns.sidebar.MatchString(names):
			return RoleSidebar
		}
	}

	// Link-dense blocks without any markup are treated as navigation. Require
	// a minimum link count to avoid flagging small elements.
	switch node.Tag {
	case "div", "section", "ul", "ol":
		if countLinks(tree, id) >= 4 && linkDensity(tree, id) > 0.6 {
			return RoleNavigation
		}
	}

	return RoleContent
}

// structurallyTop reports whether every ancestor of the node is a structural
// wrapper.
func structurallyTop(tree *model.Tree, id model.NodeID) bool {
	node := tree.Node(id)
	if node == nil {
		return false
	}
	for parent := node.Parent; parent != model.NoNode; {
		p := tree.Node(parent)
		if p == nil || !structuralTags[p.Tag] {
			return false
		}
		parent = p.Parent
	}
	return true
}

// linkDensity returns the ratio of text inside links to all text in the
// subtree, 0 when the subtree has no text.
func linkDensity(tree *model.Tree, id model.NodeID) float64 {
	total := textLength(tree, id)
	if total == 0 {
		return 0
	}
	return float64(linkTextLength(tree, id)) / float64(total)
}

// textLength returns the total trimmed text length in a subtree.
func textLength(tree *model.Tree, id model.NodeID) int {
	total := 0
	tree.Walk(id, func(_ model.NodeID, n *model.Node) bool {
		total += len(strings.TrimSpace(n.Text))
		return true
	})
	return total
}

// linkTextLength returns the trimmed text length inside <a> subtrees.
func linkTextLength(tree *model.Tree, id model.NodeID) int {
	total := 0
	tree.Walk(id, func(linkID model.NodeID, n *model.Node) bool {
		if n.Tag == "a" {
			total += textLength(tree, linkID)
			return false
		}
		return true
	})
	return total
}

// countLinks returns the number of <a> elements in a subtree.
func countLinks(tree *model.Tree, id model.NodeID) int {
	count := 0
	tree.Walk(id, func(_ model.NodeID, n *model.Node) bool {
		if n.Tag == "a" {
			count++
		}
		return true
	})
	return count
}
