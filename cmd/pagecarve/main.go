// pagecarve is a command-line tool for splitting captured web pages into
// visually coherent, size-bounded sections.
//
// Input is a page capture JSON file: the rendered DOM tree with layout
// geometry, the serialized page HTML, and optionally a full-page
// screenshot. Sections and the validation report are written as JSON
// into the output directory.
//
// Configuration:
//
// Pipeline thresholds can be overridden with a YAML configuration file:
//
//	max_tokens: 50000
//	min_section_height: 50
//	min_section_width_ratio: 0.2
//	min_section_tokens: 50
//	overlap_threshold_px2: 100
//	coverage_tolerance_px: 1.0
//
// Usage:
//
//	pagecarve capture.json -o sections/
//	pagecarve capture.json -c thresholds.yaml --max-tokens 20000
//	pagecarve capture.json --screenshots --verify
//
// The --verify flag OCRs each section crop and reports its text
// similarity to the section's DOM text; it requires a binary built with
// -tags ocr and Tesseract installed.
//
// Exit status is 1 when the run fails or the final section set violates
// a layout invariant, 0 otherwise.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/pagecarve"
	"github.com/tsawler/pagecarve/chunk"
	"github.com/tsawler/pagecarve/fragment"
	"github.com/tsawler/pagecarve/model"
	"github.com/tsawler/pagecarve/ocr"
	"github.com/tsawler/pagecarve/screenshot"
)

var CLI struct {
	Input       string `arg:"" help:"Page capture JSON file" type:"existingfile"`
	OutDir      string `short:"o" help:"Directory for section files and the validation report" default:"./sections"`
	Config      string `short:"c" help:"YAML file overriding pipeline thresholds"`
	MaxTokens   int    `help:"Per-section token budget (overrides the config file)"`
	JSONL       bool   `help:"Write one sections.jsonl file instead of per-section files"`
	NoPayload   bool   `help:"Strip HTML payloads and style summaries from section output"`
	Screenshots bool   `help:"Crop a PNG per section from the capture screenshot"`
	Verify      bool   `help:"OCR each section crop and report similarity to its DOM text (needs -tags ocr)"`
	Verbose     bool   `short:"v" help:"Enable verbose logging"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("pagecarve"),
		kong.Description("Split a captured web page into visually coherent, size-bounded sections."))

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("Carve failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := buildConfig()
	if err != nil {
		return err
	}

	carver := pagecarve.Open(CLI.Input).WithConfig(config)

	result, warnings, err := carver.Chunks()
	if result == nil {
		return err
	}
	// An invariant violation still yields a result; write everything out
	// before failing so the report can be inspected.
	carveErr := err

	for _, w := range warnings {
		slog.Warn("Carve warning", "code", w.Code, "message", w.Message)
	}
	slog.Info("Carved page",
		"sections", len(result.Chunks),
		"tokens", result.Report.Stats.TotalTokens,
		"valid", result.Report.PrinciplesMet)

	if err := writeSections(result); err != nil {
		return err
	}

	if CLI.Screenshots || CLI.Verify {
		if err := processScreenshot(carver, result); err != nil {
			return err
		}
	}

	return carveErr
}

// yamlConfig mirrors the threshold configuration file. Pointer fields
// distinguish absent keys from explicit zeroes.
type yamlConfig struct {
	MaxTokens            *int     `yaml:"max_tokens"`
	MinSectionHeight     *float64 `yaml:"min_section_height"`
	MinSectionWidthRatio *float64 `yaml:"min_section_width_ratio"`
	MinSectionTokens     *int     `yaml:"min_section_tokens"`
	OverlapThresholdPx2  *float64 `yaml:"overlap_threshold_px2"`
	CoverageTolerancePx  *float64 `yaml:"coverage_tolerance_px"`
	TokenDivisor         *int     `yaml:"token_divisor"`
	ContainerTags        []string `yaml:"container_tags"`
	SkipTags             []string `yaml:"skip_tags"`
}

// loadConfig reads a YAML file and applies it over the default pipeline
// configuration.
func loadConfig(path string) (chunk.Config, error) {
	config := chunk.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return config, err
	}

	if yc.MaxTokens != nil {
		config.MaxTokens = *yc.MaxTokens
	}
	if yc.MinSectionHeight != nil {
		config.MinSectionHeight = *yc.MinSectionHeight
	}
	if yc.MinSectionWidthRatio != nil {
		config.MinSectionWidthRatio = *yc.MinSectionWidthRatio
	}
	if yc.MinSectionTokens != nil {
		config.MinSectionTokens = *yc.MinSectionTokens
	}
	if yc.OverlapThresholdPx2 != nil {
		config.OverlapThresholdPx2 = *yc.OverlapThresholdPx2
	}
	if yc.CoverageTolerancePx != nil {
		config.CoverageTolerancePx = *yc.CoverageTolerancePx
	}
	if yc.TokenDivisor != nil {
		config.TokenDivisor = *yc.TokenDivisor
	}
	if len(yc.ContainerTags) > 0 {
		config.ContainerTags = yc.ContainerTags
	}
	if len(yc.SkipTags) > 0 {
		config.SkipTags = yc.SkipTags
	}

	return config, nil
}

// buildConfig resolves the pipeline configuration: defaults, then the
// config file, then individual flag overrides.
func buildConfig() (chunk.Config, error) {
	config := chunk.DefaultConfig()

	if CLI.Config != "" {
		loaded, err := loadConfig(CLI.Config)
		if err != nil {
			return config, fmt.Errorf("loading config %s: %w", CLI.Config, err)
		}
		config = loaded
	}

	if CLI.MaxTokens > 0 {
		config.MaxTokens = CLI.MaxTokens
	}
	config.Logger = slog.Default()

	return config, nil
}

// writeSections exports the sections and validation report into the
// output directory.
func writeSections(result *chunk.Result) error {
	exportConfig := chunk.DefaultExportConfig()
	exportConfig.IncludePayload = !CLI.NoPayload

	if CLI.JSONL {
		exportConfig.Format = chunk.ExportFormatJSONL
		if err := os.MkdirAll(CLI.OutDir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		path := filepath.Join(CLI.OutDir, "sections"+exportConfig.Format.FileExtension())
		if err := chunk.NewExporterWithConfig(exportConfig).ExportToFile(result, path); err != nil {
			return err
		}

		report, err := json.MarshalIndent(result.Report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding validation report: %w", err)
		}
		if err := os.WriteFile(filepath.Join(CLI.OutDir, chunk.ReportFileName), report, 0644); err != nil {
			return fmt.Errorf("writing validation report: %w", err)
		}

		slog.Info("Wrote sections", "file", path)
		return nil
	}

	if err := chunk.NewBatchExporterWithConfig(exportConfig).ExportToDir(result, CLI.OutDir); err != nil {
		return err
	}
	slog.Info("Wrote section files", "dir", CLI.OutDir, "count", len(result.Chunks))
	return nil
}

// processScreenshot crops per-section images and, when asked, verifies
// them against the captured DOM text via OCR.
func processScreenshot(carver *pagecarve.Carver, result *chunk.Result) error {
	page, err := carver.Page()
	if err != nil {
		return err
	}
	if page.Screenshot == "" {
		slog.Warn("Capture has no screenshot; skipping image output")
		return nil
	}

	img, err := screenshot.Decode(page.Screenshot)
	if err != nil {
		return fmt.Errorf("decoding screenshot: %w", err)
	}
	cropper := screenshot.NewCropper(img, page.Metadata.PageWidth)
	slog.Debug("Decoded screenshot", "scale", cropper.Scale())

	if CLI.Screenshots {
		written, err := cropper.SaveSections(result.Chunks, filepath.Join(CLI.OutDir, "images"))
		if err != nil {
			return fmt.Errorf("writing section images: %w", err)
		}
		slog.Info("Wrote section images", "count", len(written))
	}

	if CLI.Verify {
		return verifySections(cropper, page, result)
	}
	return nil
}

// verifySections OCRs each section crop and logs its text similarity to
// the section's DOM text.
func verifySections(cropper *screenshot.Cropper, page *model.PageData, result *chunk.Result) error {
	client, err := ocr.New()
	if err != nil {
		return fmt.Errorf("creating OCR client: %w", err)
	}
	defer client.Close()

	frag, err := fragment.New(page.RawHTML)
	if err != nil {
		return fmt.Errorf("parsing page HTML: %w", err)
	}

	for _, section := range result.Chunks {
		crop, err := cropper.CropSection(section.Rect)
		if err != nil {
			slog.Warn("Section is outside the screenshot", "section", section.Name)
			continue
		}

		data, err := screenshot.EncodePNG(crop)
		if err != nil {
			return err
		}
		text, err := client.RecognizeImage(data)
		if err != nil {
			return fmt.Errorf("OCR on %s: %w", section.Name, err)
		}

		score := ocr.Similarity(text, frag.Text(section.Selector))
		slog.Info("Verified section",
			"section", section.Name,
			"similarity", fmt.Sprintf("%.2f", score))
	}
	return nil
}
