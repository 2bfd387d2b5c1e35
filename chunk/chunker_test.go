package chunk

import (
	"reflect"
	"testing"

	"github.com/tsawler/pagecarve/model"
)

// ============================================================================
// Test Helpers
// ============================================================================

// makeCandidate builds a pipeline candidate detached from any element tree.
func makeCandidate(left, top, width, height float64, tokens int) *Candidate {
	return &Candidate{
		Node:     model.NoNode,
		Tag:      "div",
		Selector: "div",
		Rect:     model.NewRect(left, top, width, height),
		Tokens:   tokens,
	}
}

// treeSpec describes one element when assembling a test tree.
type treeSpec struct {
	tag      string
	id       string
	classes  []string
	attrs    map[string]string
	text     string
	rect     model.Rect
	content  int
	children []treeSpec
}

// buildTree flattens a treeSpec into an arena tree in depth-first order.
func buildTree(spec treeSpec) *model.Tree {
	tree := &model.Tree{}
	var add func(s treeSpec, parent model.NodeID) model.NodeID
	add = func(s treeSpec, parent model.NodeID) model.NodeID {
		id := model.NodeID(len(tree.Nodes))
		tree.Nodes = append(tree.Nodes, model.Node{
			Tag:         s.tag,
			ID:          s.id,
			Classes:     s.classes,
			Attributes:  s.attrs,
			Text:        s.text,
			Rect:        s.rect,
			ContentSize: s.content,
			Visible:     true,
			Parent:      parent,
		})
		var children []model.NodeID
		for _, c := range s.children {
			children = append(children, add(c, id))
		}
		tree.Nodes[id].Children = children
		return id
	}
	add(spec, model.NoNode)
	return tree
}

// buildPage wraps a tree in page data with the given dimensions.
func buildPage(tree *model.Tree, width, height float64) *model.PageData {
	page := model.NewPageData()
	page.Tree = tree
	page.Metadata.PageWidth = width
	page.Metadata.PageHeight = height
	return page
}

// samplePage returns a page whose sections are known: a header, a list, a
// table that absorbs an undersized note, and a footer, tiling 2000px exactly.
func samplePage() *model.PageData {
	tree := buildTree(treeSpec{
		tag: "html", rect: model.NewRect(0, 0, 1000, 2000), content: 8000,
		children: []treeSpec{
			{tag: "body", rect: model.NewRect(0, 0, 1000, 2000), content: 8000,
				children: []treeSpec{
					{tag: "header", rect: model.NewRect(0, 0, 1000, 300), content: 1200},
					{tag: "div", id: "main", rect: model.NewRect(0, 300, 1000, 1200), content: 4800,
						children: []treeSpec{
							{tag: "ul", rect: model.NewRect(0, 300, 1000, 600), content: 2000},
							{tag: "p", rect: model.NewRect(0, 900, 1000, 40), content: 100},
							{tag: "table", rect: model.NewRect(0, 940, 1000, 560), content: 2200},
						}},
					{tag: "footer", rect: model.NewRect(0, 1500, 1000, 500), content: 1600},
					{tag: "script", rect: model.NewRect(0, 0, 0, 0), content: 9000},
				}},
		},
	})
	return buildPage(tree, 1000, 2000)
}

// chunksToCandidates turns finalized sections back into candidates, the shape
// an already-valid run would feed into the pipeline again.
func chunksToCandidates(chunks []Chunk) []*Candidate {
	out := make([]*Candidate, len(chunks))
	for i, c := range chunks {
		out[i] = &Candidate{
			Node:      model.NoNode,
			Tag:       c.Type,
			Selector:  c.Selector,
			Role:      c.Role,
			Rect:      c.Rect,
			Tokens:    c.EstimatedTokens,
			Oversized: c.Oversized,
		}
	}
	return out
}

// ============================================================================
// Config Tests
// ============================================================================

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.MaxTokens != 50000 {
		t.Errorf("MaxTokens = %d, want 50000", config.MaxTokens)
	}
	if config.MinSectionHeight != 50 {
		t.Errorf("MinSectionHeight = %v, want 50", config.MinSectionHeight)
	}
	if config.MinSectionWidthRatio != 0.2 {
		t.Errorf("MinSectionWidthRatio = %v, want 0.2", config.MinSectionWidthRatio)
	}
	if config.MinSectionTokens != 50 {
		t.Errorf("MinSectionTokens = %d, want 50", config.MinSectionTokens)
	}
	if config.OverlapThresholdPx2 != 100 {
		t.Errorf("OverlapThresholdPx2 = %v, want 100", config.OverlapThresholdPx2)
	}
	if config.TokenDivisor != 4 {
		t.Errorf("TokenDivisor = %d, want 4", config.TokenDivisor)
	}
	if !config.isContainer("div") || !config.isContainer("body") {
		t.Error("div and body should be containers")
	}
	if config.isContainer("p") {
		t.Error("p should not be a container")
	}
	if !config.isSkip("script") || !config.isSkip("svg") {
		t.Error("script and svg should be skipped")
	}
}

func TestConfigTokens(t *testing.T) {
	config := DefaultConfig()

	node := &model.Node{ContentSize: 1023}
	if got := config.tokens(node); got != 255 {
		t.Errorf("tokens(1023 chars) = %d, want 255 (rounded down)", got)
	}

	// A zero divisor falls back to the default rather than dividing by zero.
	config.TokenDivisor = 0
	if got := config.tokens(node); got != 255 {
		t.Errorf("tokens with zero divisor = %d, want 255", got)
	}
}

// ============================================================================
// Chunker Tests
// ============================================================================

func TestChunkerNilPage(t *testing.T) {
	_, err := NewChunker().Chunk(nil)
	if err == nil {
		t.Error("Chunk(nil) should return an error")
	}
}

func TestChunkerEmptyTree(t *testing.T) {
	page := model.NewPageData()
	_, err := NewChunker().Chunk(page)
	if err == nil {
		t.Error("Chunk() on a page without elements should return an error")
	}
}

func TestChunkerSamplePage(t *testing.T) {
	result, err := NewChunker().Chunk(samplePage())
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}

	if len(result.Chunks) != 4 {
		t.Fatalf("got %d sections, want 4: %+v", len(result.Chunks), result.Chunks)
	}

	wantNames := []string{"section_1", "section_2", "section_3", "section_4"}
	wantTypes := []string{"header", "ul", "table", "footer"}
	wantTokens := []int{300, 500, 575, 400}
	for i, chunk := range result.Chunks {
		if chunk.Name != wantNames[i] {
			t.Errorf("section %d name = %q, want %q", i, chunk.Name, wantNames[i])
		}
		if chunk.Type != wantTypes[i] {
			t.Errorf("section %d type = %q, want %q", i, chunk.Type, wantTypes[i])
		}
		if chunk.EstimatedTokens != wantTokens[i] {
			t.Errorf("section %d tokens = %d, want %d", i, chunk.EstimatedTokens, wantTokens[i])
		}
	}

	report := result.Report
	if !report.PrinciplesMet {
		t.Errorf("PrinciplesMet = false, errors: %v", report.Errors)
	}
	if report.SectionCount != 4 {
		t.Errorf("SectionCount = %d, want 4", report.SectionCount)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", report.Warnings)
	}
	if report.Stats.TotalTokens != 1775 {
		t.Errorf("TotalTokens = %d, want 1775", report.Stats.TotalTokens)
	}
	if report.Stats.MinTokens != 300 || report.Stats.MaxTokens != 575 {
		t.Errorf("Min/MaxTokens = %d/%d, want 300/575", report.Stats.MinTokens, report.Stats.MaxTokens)
	}

	// The sections tile the page.
	if top := result.Chunks[0].Rect.Top(); top != 0 {
		t.Errorf("first section top = %v, want 0", top)
	}
	if bottom := result.Chunks[3].Rect.Bottom(); bottom != 2000 {
		t.Errorf("last section bottom = %v, want 2000", bottom)
	}
	for i := 1; i < len(result.Chunks); i++ {
		prev, curr := result.Chunks[i-1], result.Chunks[i]
		if prev.Rect.Bottom() != curr.Rect.Top() {
			t.Errorf("sections %d and %d do not meet: %v vs %v",
				i-1, i, prev.Rect.Bottom(), curr.Rect.Top())
		}
	}
}

func TestChunkerMalformedNodeWarning(t *testing.T) {
	page := samplePage()
	page.MalformedNodes = 2

	result, err := NewChunker().Chunk(page)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(result.Report.Warnings) == 0 {
		t.Fatal("malformed nodes should surface as a report warning")
	}
}

func TestChunkCandidatesCleanSequence(t *testing.T) {
	// Four stacked full-width candidates tiling a 5000px page pass through
	// every stage unchanged.
	candidates := []*Candidate{
		makeCandidate(0, 0, 1920, 800, 1000),
		makeCandidate(0, 800, 1920, 1200, 2000),
		makeCandidate(0, 2000, 1920, 1500, 1500),
		makeCandidate(0, 3500, 1920, 1500, 1200),
	}
	wantRects := []model.Rect{
		model.NewRect(0, 0, 1920, 800),
		model.NewRect(0, 800, 1920, 1200),
		model.NewRect(0, 2000, 1920, 1500),
		model.NewRect(0, 3500, 1920, 1500),
	}

	result, err := NewChunker().ChunkCandidates(candidates, nil, 1920, 5000)
	if err != nil {
		t.Fatalf("ChunkCandidates() error = %v", err)
	}

	if len(result.Chunks) != 4 {
		t.Fatalf("got %d sections, want 4", len(result.Chunks))
	}
	for i, chunk := range result.Chunks {
		if chunk.Rect != wantRects[i] {
			t.Errorf("section %d rect = %+v, want %+v", i, chunk.Rect, wantRects[i])
		}
	}
	if !result.Report.PrinciplesMet || len(result.Report.Errors) != 0 {
		t.Errorf("clean sequence should validate, errors: %v", result.Report.Errors)
	}
	if len(result.Report.Warnings) != 0 {
		t.Errorf("clean sequence should produce no warnings, got: %v", result.Report.Warnings)
	}
}

func TestChunkCandidatesIdempotence(t *testing.T) {
	candidates := []*Candidate{
		makeCandidate(0, 0, 1920, 800, 1000),
		makeCandidate(0, 800, 1920, 1200, 2000),
		makeCandidate(0, 2000, 1920, 3000, 1500),
	}

	chunker := NewChunker()
	first, err := chunker.ChunkCandidates(candidates, nil, 1920, 5000)
	if err != nil {
		t.Fatalf("first run error = %v", err)
	}

	second, err := chunker.ChunkCandidates(chunksToCandidates(first.Chunks), nil, 1920, 5000)
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}

	if !reflect.DeepEqual(first.Chunks, second.Chunks) {
		t.Errorf("pipeline is not idempotent:\nfirst:  %+v\nsecond: %+v", first.Chunks, second.Chunks)
	}
}

func TestChunkerDeterminism(t *testing.T) {
	first, err := NewChunker().Chunk(samplePage())
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	second, err := NewChunker().Chunk(samplePage())
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over the same page should produce identical results")
	}
}

// TestChunkerOrderStability checks the downstream ordering contract: section
// indices increase with top position, and left to right inside a shared band.
func TestChunkerOrderStability(t *testing.T) {
	candidates := []*Candidate{
		makeCandidate(0, 1200, 1920, 400, 900),  // bottom row, listed first
		makeCandidate(980, 400, 900, 600, 700),  // middle row, right column
		makeCandidate(0, 400, 900, 600, 800),    // middle row, left column
		makeCandidate(0, 0, 1920, 380, 500),     // top row
	}

	result, err := NewChunker().ChunkCandidates(candidates, nil, 1920, 1600)
	if err != nil {
		t.Fatalf("ChunkCandidates() error = %v", err)
	}
	if len(result.Chunks) != 4 {
		t.Fatalf("got %d sections, want 4", len(result.Chunks))
	}

	for i := 1; i < len(result.Chunks); i++ {
		prev, curr := result.Chunks[i-1], result.Chunks[i]
		if curr.Rect.Top() < prev.Rect.Top() {
			t.Errorf("section %d top %v precedes section %d top %v",
				i+1, curr.Rect.Top(), i, prev.Rect.Top())
		}
		if curr.Rect.Top() == prev.Rect.Top() && curr.Rect.Left() < prev.Rect.Left() {
			t.Errorf("sections %d and %d share a band but are not left to right", i, i+1)
		}
	}
}

func BenchmarkChunkCandidates(b *testing.B) {
	chunker := NewChunker()
	for i := 0; i < b.N; i++ {
		candidates := make([]*Candidate, 0, 100)
		for k := 0; k < 100; k++ {
			candidates = append(candidates, makeCandidate(0, float64(k*100), 1920, 90, 500))
		}
		if _, err := chunker.ChunkCandidates(candidates, nil, 1920, 10000); err != nil {
			b.Fatal(err)
		}
	}
}
