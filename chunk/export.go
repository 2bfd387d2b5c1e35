package chunk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ReportFileName is the file the validation report is written to when
// exporting sections to a directory.
const ReportFileName = "_validation.json"

// ExportFormat defines the available export formats
type ExportFormat int

const (
	// ExportFormatJSON exports sections and report as a single JSON document
	ExportFormatJSON ExportFormat = iota
	// ExportFormatJSONL exports as JSON Lines (one section per line)
	ExportFormatJSONL
)

// String returns a human-readable representation of the export format
func (ef ExportFormat) String() string {
	switch ef {
	case ExportFormatJSON:
		return "json"
	case ExportFormatJSONL:
		return "jsonl"
	default:
		return "unknown"
	}
}

// FileExtension returns the typical file extension for this format
func (ef ExportFormat) FileExtension() string {
	switch ef {
	case ExportFormatJSON:
		return ".json"
	case ExportFormatJSONL:
		return ".jsonl"
	default:
		return ".txt"
	}
}

// ExportConfig holds configuration options for export
type ExportConfig struct {
	// Format specifies the export format
	Format ExportFormat

	// PrettyPrint enables indented output for JSON formats
	PrettyPrint bool

	// IncludePayload keeps the HTML fragment, image and link lists, and style
	// summary on each exported section; disable for lean geometry-only output
	IncludePayload bool

	// IncludeReport includes the validation report in whole-run JSON exports
	IncludeReport bool
}

// DefaultExportConfig returns sensible defaults for export configuration
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		Format:         ExportFormatJSON,
		PrettyPrint:    true,
		IncludePayload: true,
		IncludeReport:  true,
	}
}

// Exporter serializes chunking results
type Exporter struct {
	config ExportConfig
}

// NewExporter creates a new exporter with default configuration
func NewExporter() *Exporter {
	return &Exporter{
		config: DefaultExportConfig(),
	}
}

// NewExporterWithConfig creates an exporter with custom configuration
func NewExporterWithConfig(config ExportConfig) *Exporter {
	return &Exporter{
		config: config,
	}
}

// exportDocument is the whole-run JSON shape.
type exportDocument struct {
	Sections []Chunk `json:"sections"`
	Report   *Report `json:"report,omitempty"`
}

// Export writes the result to the given writer in the configured format. JSON
// produces one document holding the sections and, when configured, the report;
// JSONL produces one section per line with the report left out.
func (e *Exporter) Export(result *Result, w io.Writer) error {
	if result == nil {
		return fmt.Errorf("result is nil")
	}

	switch e.config.Format {
	case ExportFormatJSON:
		return e.exportJSON(result, w)
	case ExportFormatJSONL:
		return e.exportJSONL(result, w)
	default:
		return fmt.Errorf("unsupported export format: %v", e.config.Format)
	}
}

// ExportToFile writes the result to a file
func (e *Exporter) ExportToFile(result *Result, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	return e.Export(result, f)
}

// ExportToString writes the result to a string
func (e *Exporter) ExportToString(result *Result) (string, error) {
	var buf bytes.Buffer
	if err := e.Export(result, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// prepareForExport strips the payload fields when configured to.
func (e *Exporter) prepareForExport(chunk Chunk) Chunk {
	if e.config.IncludePayload {
		return chunk
	}
	chunk.HTML = ""
	chunk.Styles = nil
	chunk.Images = nil
	chunk.Links = nil
	return chunk
}

// exportJSON writes sections and report as one JSON document.
func (e *Exporter) exportJSON(result *Result, w io.Writer) error {
	doc := exportDocument{
		Sections: make([]Chunk, len(result.Chunks)),
	}
	for i, chunk := range result.Chunks {
		doc.Sections[i] = e.prepareForExport(chunk)
	}
	if e.config.IncludeReport {
		report := result.Report
		doc.Report = &report
	}

	encoder := json.NewEncoder(w)
	if e.config.PrettyPrint {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(doc)
}

// exportJSONL writes one section per line.
func (e *Exporter) exportJSONL(result *Result, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for i, chunk := range result.Chunks {
		if err := encoder.Encode(e.prepareForExport(chunk)); err != nil {
			return fmt.Errorf("encoding section %d: %w", i, err)
		}
	}
	return nil
}

// SectionFile is one artifact produced by a batch export: a single section,
// or the validation report, serialized for writing.
type SectionFile struct {
	// Name is the file name, e.g. "section_3.json" or "_validation.json".
	Name string

	// Data is the serialized content.
	Data []byte
}

// BatchExporter writes each section to its own file alongside the validation
// report, for consumers that process sections independently.
type BatchExporter struct {
	config ExportConfig
}

// NewBatchExporter creates a new batch exporter with default configuration
func NewBatchExporter() *BatchExporter {
	return &BatchExporter{
		config: DefaultExportConfig(),
	}
}

// NewBatchExporterWithConfig creates a batch exporter with custom configuration
func NewBatchExporterWithConfig(config ExportConfig) *BatchExporter {
	return &BatchExporter{
		config: config,
	}
}

// Export serializes each section, and the report when configured, calling the
// callback for each file in order. Section files are named after the
// sections themselves.
func (b *BatchExporter) Export(result *Result, callback func(SectionFile) error) error {
	if result == nil {
		return fmt.Errorf("result is nil")
	}

	exporter := NewExporterWithConfig(b.config)
	for i, chunk := range result.Chunks {
		data, err := b.marshal(exporter.prepareForExport(chunk))
		if err != nil {
			return fmt.Errorf("encoding %s: %w", chunk.Name, err)
		}
		file := SectionFile{Name: chunk.Name + ".json", Data: data}
		if err := callback(file); err != nil {
			return fmt.Errorf("processing section file %d: %w", i, err)
		}
	}

	if b.config.IncludeReport {
		data, err := b.marshal(result.Report)
		if err != nil {
			return fmt.Errorf("encoding validation report: %w", err)
		}
		if err := callback(SectionFile{Name: ReportFileName, Data: data}); err != nil {
			return fmt.Errorf("processing validation report: %w", err)
		}
	}

	return nil
}

// ExportToDir writes the section files and validation report into a
// directory, creating it if needed.
func (b *BatchExporter) ExportToDir(result *Result, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return b.Export(result, func(file SectionFile) error {
		return os.WriteFile(filepath.Join(dir, file.Name), file.Data, 0644)
	})
}

// marshal serializes one record honoring the pretty-print setting.
func (b *BatchExporter) marshal(v any) ([]byte, error) {
	if b.config.PrettyPrint {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
