package chunk

import (
	"github.com/tsawler/pagecarve/model"
)

// Normalizer prunes non-visual elements, traverses structural containers, and
// merges sub-minimum elements into sibling candidates, producing the initial
// ordered candidate list.
type Normalizer struct {
	config Config
}

// NewNormalizer creates a normalizer with the given configuration.
func NewNormalizer(config Config) *Normalizer {
	return &Normalizer{config: config}
}

// Normalize walks the element tree in document order and returns the candidate
// list. A page on which nothing qualifies yields the page body as a single
// catch-all candidate, never an empty list.
func (n *Normalizer) Normalize(tree *model.Tree, pageWidth float64) []*Candidate {
	if tree == nil || tree.Len() == 0 {
		return nil
	}

	candidates := n.collect(tree, tree.Root(), pageWidth)
	if len(candidates) > 0 {
		return candidates
	}

	// Degenerate page: take the body whole, qualified or not.
	body := tree.FindByTag("body")
	if body == model.NoNode {
		body = tree.Root()
	}
	return []*Candidate{newCandidate(n.config, tree, body)}
}

// collect returns the candidates contributed by one subtree.
func (n *Normalizer) collect(tree *model.Tree, id model.NodeID, pageWidth float64) []*Candidate {
	node := tree.Node(id)
	if node == nil || n.config.isSkip(node.Tag) {
		return nil
	}

	// Non-containers are taken whole: a candidate if they qualify, otherwise
	// nothing (the parent absorbs them into a sibling).
	if !n.config.isContainer(node.Tag) {
		if qualifies(n.config, node, pageWidth) {
			return []*Candidate{newCandidate(n.config, tree, id)}
		}
		return nil
	}

	// Containers are traversed into. Each child position becomes either a run
	// of candidates or a leftover awaiting absorption, in document order.
	var entries []siblingEntry
	for _, childID := range tree.Children(id) {
		child := tree.Node(childID)
		if child == nil || n.config.isSkip(child.Tag) {
			continue
		}

		if n.config.isContainer(child.Tag) {
			sub := n.collect(tree, childID, pageWidth)
			if len(sub) > 0 {
				for _, c := range sub {
					entries = append(entries, siblingEntry{cand: c})
				}
				continue
			}
			// Nothing usable inside this container; fall through and treat
			// the container itself as a plain element.
		}

		if qualifies(n.config, child, pageWidth) {
			entries = append(entries, siblingEntry{cand: newCandidate(n.config, tree, childID)})
		} else if !child.Rect.IsEmpty() {
			entries = append(entries, siblingEntry{leftover: childID})
		}
	}

	candidates := absorbLeftovers(n.config, tree, entries)
	if len(candidates) > 0 {
		return candidates
	}

	// No descendant qualified. The container stands in for its subtree when it
	// qualifies on its own; otherwise it bubbles up as a leftover.
	if qualifies(n.config, node, pageWidth) {
		return []*Candidate{newCandidate(n.config, tree, id)}
	}
	return nil
}

// siblingEntry is one child position during candidate collection: either a
// formed candidate or a leftover element waiting to be absorbed.
type siblingEntry struct {
	cand     *Candidate
	leftover model.NodeID
}

// absorbLeftovers merges every leftover into the vertically closest of its
// nearest preceding and nearest following sibling candidates, ties going to
// the following one to preserve top-to-bottom narrative order. Absorbing
// unions the rects and adds the tokens. Returns the candidates in document
// order.
func absorbLeftovers(config Config, tree *model.Tree, entries []siblingEntry) []*Candidate {
	var candidates []*Candidate
	for _, e := range entries {
		if e.cand != nil {
			candidates = append(candidates, e.cand)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	for i, e := range entries {
		if e.cand != nil {
			continue
		}
		node := tree.Node(e.leftover)
		if node == nil {
			continue
		}

		var prev, next *Candidate
		for j := i - 1; j >= 0; j-- {
			if entries[j].cand != nil {
				prev = entries[j].cand
				break
			}
		}
		for j := i + 1; j < len(entries); j++ {
			if entries[j].cand != nil {
				next = entries[j].cand
				break
			}
		}

		target := next
		if next == nil {
			target = prev
		} else if prev != nil && verticalGap(node.Rect, prev.Rect) < verticalGap(node.Rect, next.Rect) {
			target = prev
		}

		target.Rect = target.Rect.Union(node.Rect)
		target.Tokens += config.tokens(node)
	}

	return candidates
}
