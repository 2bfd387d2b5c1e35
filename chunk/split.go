package chunk

import (
	"github.com/tsawler/pagecarve/model"
)

// Splitter recursively breaks over-budget candidates into their children in
// document order, flagging those that cannot be subdivided.
type Splitter struct {
	config Config
}

// NewSplitter creates a splitter with the given configuration.
func NewSplitter(config Config) *Splitter {
	return &Splitter{config: config}
}

// Split returns the candidates with every over-budget entry replaced by its
// children, the same rule applied recursively and the results concatenated in
// document order. A candidate over budget with no splittable children is
// returned as-is with Oversized set; that is a reported limitation, not an
// error. The tree may be nil, in which case splitting degrades to flagging.
func (s *Splitter) Split(candidates []*Candidate, tree *model.Tree, pageWidth float64) []*Candidate {
	out := make([]*Candidate, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, s.split(cand, tree, pageWidth)...)
	}
	return out
}

// split applies the budget rule to one candidate.
func (s *Splitter) split(cand *Candidate, tree *model.Tree, pageWidth float64) []*Candidate {
	if cand.Tokens <= s.config.MaxTokens {
		return []*Candidate{cand}
	}

	children := s.childCandidates(cand, tree, pageWidth)
	if len(children) == 0 {
		cand.Oversized = true
		return []*Candidate{cand}
	}

	var out []*Candidate
	for _, child := range children {
		out = append(out, s.split(child, tree, pageWidth)...)
	}
	return out
}

// childCandidates forms candidates from the direct children of a candidate's
// source element. Children below the minimum section thresholds do not stand
// on their own; they are absorbed into their nearest sibling candidate the
// same way the normalizer absorbs them. Returns nil when the candidate has no
// children that could carry a section.
func (s *Splitter) childCandidates(cand *Candidate, tree *model.Tree, pageWidth float64) []*Candidate {
	if tree == nil || cand.Node == model.NoNode {
		return nil
	}

	var entries []siblingEntry
	for _, childID := range tree.Children(cand.Node) {
		child := tree.Node(childID)
		if child == nil || s.config.isSkip(child.Tag) {
			continue
		}
		if qualifies(s.config, child, pageWidth) {
			entries = append(entries, siblingEntry{cand: newCandidate(s.config, tree, childID)})
		} else if !child.Rect.IsEmpty() {
			entries = append(entries, siblingEntry{leftover: childID})
		}
	}

	return absorbLeftovers(s.config, tree, entries)
}
