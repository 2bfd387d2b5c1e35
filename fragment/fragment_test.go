package fragment

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tsawler/pagecarve/chunk"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Sample</title></head>
<body>
  <header id="top">
    <h1>Welcome</h1>
    <a href="/">Home</a>
  </header>
  <div class="content article">
    <p>First <a href="/a">link <span>one</span></a> and <a href="/b">two</a>.</p>
    <img src="hero.png" alt="Hero">
    <img alt="no source">
    <a name="anchor-only">not a link</a>
    <script>var x = 1;</script>
  </div>
  <div class="content">
    <p>Second content block.</p>
  </div>
  <footer>
    <p>Bye</p>
  </footer>
</body>
</html>`

func TestExtractByID(t *testing.T) {
	e, err := New(samplePage)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	p := e.Extract("#top")

	if !strings.Contains(p.HTML, `<header id="top">`) {
		t.Errorf("fragment does not start at the header: %q", p.HTML)
	}
	if !strings.Contains(p.HTML, "<h1>Welcome</h1>") {
		t.Errorf("fragment lost nested content: %q", p.HTML)
	}
	if strings.Contains(p.HTML, "content block") {
		t.Error("fragment leaked content outside the header")
	}
	if len(p.Links) != 1 || p.Links[0].Href != "/" || p.Links[0].Text != "Home" {
		t.Errorf("links = %+v", p.Links)
	}
}

func TestExtractByTagClass(t *testing.T) {
	e, err := New(samplePage)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	p := e.Extract("div.content")

	if !strings.Contains(p.HTML, "First") || strings.Contains(p.HTML, "Second") {
		t.Errorf("wrong div selected: %q", p.HTML)
	}

	// The class may be anywhere in the class list.
	p = e.Extract("div.article")
	if !strings.Contains(p.HTML, "First") {
		t.Errorf("second class token not matched: %q", p.HTML)
	}
}

func TestExtractByTag(t *testing.T) {
	e, err := New(samplePage)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	p := e.Extract("footer")

	if !strings.Contains(p.HTML, "<p>Bye</p>") {
		t.Errorf("footer fragment = %q", p.HTML)
	}
}

func TestExtractMiss(t *testing.T) {
	e, err := New(samplePage)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	for _, selector := range []string{"#missing", "nav.menu", "aside", ""} {
		p := e.Extract(selector)
		if p.HTML != "" || len(p.Images) != 0 || len(p.Links) != 0 {
			t.Errorf("selector %q should yield an empty payload, got %+v", selector, p)
		}
	}
}

func TestExtractImagesAndLinks(t *testing.T) {
	e, err := New(samplePage)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	p := e.Extract("div.content")

	if len(p.Images) != 1 {
		t.Fatalf("images = %+v, want the one with a src", p.Images)
	}
	if p.Images[0].Src != "hero.png" || p.Images[0].Alt != "Hero" {
		t.Errorf("image = %+v", p.Images[0])
	}

	if len(p.Links) != 2 {
		t.Fatalf("links = %+v, want 2 (name-only anchor excluded)", p.Links)
	}
	if p.Links[0].Href != "/a" || p.Links[0].Text != "link one" {
		t.Errorf("first link = %+v", p.Links[0])
	}
	if p.Links[1].Href != "/b" || p.Links[1].Text != "two" {
		t.Errorf("second link = %+v", p.Links[1])
	}
}

func TestExtractRefCap(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<div id="gallery">`)
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, `<img src="img%d.png"><a href="/p%d">p</a>`, i, i)
	}
	b.WriteString("</div>")

	e, err := New(b.String())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	p := e.Extract("#gallery")

	if len(p.Images) != maxRefs {
		t.Errorf("got %d images, want %d", len(p.Images), maxRefs)
	}
	if len(p.Links) != maxRefs {
		t.Errorf("got %d links, want %d", len(p.Links), maxRefs)
	}
	if p.Images[0].Src != "img0.png" || p.Images[maxRefs-1].Src != fmt.Sprintf("img%d.png", maxRefs-1) {
		t.Error("images not in document order")
	}
}

func TestText(t *testing.T) {
	e, err := New(samplePage)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if got := e.Text("#top"); got != "Welcome Home" {
		t.Errorf("Text(#top) = %q, want %q", got, "Welcome Home")
	}
	// Script content is not visible text.
	if got := e.Text("div.content"); strings.Contains(got, "var x") {
		t.Errorf("Text leaked script content: %q", got)
	}
	if got := e.Text("#missing"); got != "" {
		t.Errorf("Text(#missing) = %q, want empty", got)
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	e, err := New("")
	if err != nil {
		t.Fatalf("empty input should parse: %v", err)
	}
	if p := e.Extract("#anything"); p.HTML != "" {
		t.Errorf("payload = %+v, want empty", p)
	}
}

func TestApply(t *testing.T) {
	e, err := New(samplePage)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	chunks := []chunk.Chunk{
		{Name: "section_1", Selector: "#top"},
		{Name: "section_2", Selector: "div.content"},
		{Name: "section_3", Selector: "#gone"},
	}
	e.Apply(chunks)

	if !strings.Contains(chunks[0].HTML, "Welcome") {
		t.Errorf("section_1 payload missing: %q", chunks[0].HTML)
	}
	if len(chunks[1].Images) != 1 || len(chunks[1].Links) != 2 {
		t.Errorf("section_2 refs = %d images, %d links", len(chunks[1].Images), len(chunks[1].Links))
	}
	if chunks[2].HTML != "" {
		t.Errorf("unlocatable section should stay empty, got %q", chunks[2].HTML)
	}
}
