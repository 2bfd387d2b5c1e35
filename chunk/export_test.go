package chunk

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/pagecarve/model"
)

func sampleResult() *Result {
	chunks := []Chunk{
		{
			ID:              "section-1",
			Name:            "section_1",
			Type:            "header",
			Role:            RoleHeader,
			Selector:        "header",
			Rect:            model.NewRect(0, 0, 1000, 300),
			EstimatedTokens: 200,
			HTML:            "<header><h1>Title</h1></header>",
			Images:          []ImageRef{{Src: "logo.png", Alt: "logo"}},
			Links:           []LinkRef{{Href: "/about", Text: "About"}},
		},
		{
			ID:              "section-2",
			Name:            "section_2",
			Type:            "div",
			Role:            RoleContent,
			Selector:        "div.content",
			Rect:            model.NewRect(0, 300, 1000, 700),
			EstimatedTokens: 800,
			HTML:            "<div class=\"content\">body</div>",
		},
	}
	return &Result{
		Chunks: chunks,
		Report: Report{
			PrinciplesMet: true,
			SectionCount:  len(chunks),
			Errors:        []string{},
			Warnings:      []string{},
			Stats:         calculateStats(chunks),
		},
	}
}

func TestExportJSON(t *testing.T) {
	out, err := NewExporter().ExportToString(sampleResult())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var doc struct {
		Sections []Chunk `json:"sections"`
		Report   *Report `json:"report"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(doc.Sections))
	}
	if doc.Sections[0].Name != "section_1" || doc.Sections[1].EstimatedTokens != 800 {
		t.Errorf("sections round-tripped wrong: %+v", doc.Sections)
	}
	if doc.Sections[0].HTML == "" {
		t.Error("payload should be included by default")
	}
	if doc.Report == nil || !doc.Report.PrinciplesMet || doc.Report.Stats.TotalTokens != 1000 {
		t.Errorf("report round-tripped wrong: %+v", doc.Report)
	}
	if !strings.Contains(out, "\n  ") {
		t.Error("default export should be pretty-printed")
	}
}

func TestExportJSONL(t *testing.T) {
	config := DefaultExportConfig()
	config.Format = ExportFormatJSONL
	config.PrettyPrint = false

	out, err := NewExporterWithConfig(config).ExportToString(sampleResult())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	scanner := bufio.NewScanner(strings.NewReader(out))
	var lines int
	for scanner.Scan() {
		var chunk Chunk
		if err := json.Unmarshal(scanner.Bytes(), &chunk); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines+1, err)
		}
		lines++
	}
	if lines != 2 {
		t.Errorf("got %d lines, want 2", lines)
	}
	if strings.Contains(out, "principles_met") {
		t.Error("JSONL export should not carry the report")
	}
}

func TestExportStripsPayload(t *testing.T) {
	config := DefaultExportConfig()
	config.IncludePayload = false

	out, err := NewExporterWithConfig(config).ExportToString(sampleResult())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	if strings.Contains(out, "<header>") || strings.Contains(out, "logo.png") {
		t.Error("payload fields should be stripped")
	}
	if !strings.Contains(out, "section_1") {
		t.Error("geometry and naming must survive the strip")
	}
}

func TestExportWithoutReport(t *testing.T) {
	config := DefaultExportConfig()
	config.IncludeReport = false

	out, err := NewExporterWithConfig(config).ExportToString(sampleResult())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if strings.Contains(out, "principles_met") {
		t.Error("report should be omitted")
	}
}

func TestExportNilResult(t *testing.T) {
	if _, err := NewExporter().ExportToString(nil); err == nil {
		t.Error("expected an error for a nil result")
	}
}

func TestExportFormatStrings(t *testing.T) {
	tests := []struct {
		format ExportFormat
		str    string
		ext    string
	}{
		{ExportFormatJSON, "json", ".json"},
		{ExportFormatJSONL, "jsonl", ".jsonl"},
		{ExportFormat(99), "unknown", ".txt"},
	}
	for _, tt := range tests {
		if got := tt.format.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
		if got := tt.format.FileExtension(); got != tt.ext {
			t.Errorf("FileExtension() = %q, want %q", got, tt.ext)
		}
	}
}

func TestBatchExportOrder(t *testing.T) {
	var names []string
	err := NewBatchExporter().Export(sampleResult(), func(file SectionFile) error {
		names = append(names, file.Name)
		if len(file.Data) == 0 {
			t.Errorf("%s has no data", file.Name)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("batch export failed: %v", err)
	}

	want := []string{"section_1.json", "section_2.json", ReportFileName}
	if len(names) != len(want) {
		t.Fatalf("got files %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("file %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestBatchExportCallbackError(t *testing.T) {
	sentinel := errors.New("disk full")
	err := NewBatchExporter().Export(sampleResult(), func(SectionFile) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("callback error not propagated: %v", err)
	}
}

func TestBatchExportToDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sections")

	if err := NewBatchExporter().ExportToDir(sampleResult(), dir); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	for _, name := range []string{"section_1.json", "section_2.json", ReportFileName} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if !json.Valid(data) {
			t.Errorf("%s is not valid JSON", name)
		}
	}

	var report Report
	data, _ := os.ReadFile(filepath.Join(dir, ReportFileName))
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.SectionCount != 2 {
		t.Errorf("report section count = %d, want 2", report.SectionCount)
	}
}
