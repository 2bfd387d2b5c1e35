// Package pagecarve splits captured web pages into visually coherent,
// size-bounded sections suitable for downstream processing.
//
// Input is a page capture: the rendered DOM tree with layout geometry,
// the serialized page HTML, and optionally a full-page screenshot. The
// pipeline walks the tree, qualifies visually significant elements,
// splits anything over the token budget, resolves spatial conflicts,
// and closes vertical gaps so the final sections tile the page height.
//
// Basic usage:
//
//	result, warnings, err := pagecarve.Open("capture.json").Chunks()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pagecarve.FormatWarnings(warnings))
//	}
//
// With options:
//
//	result, _, err := pagecarve.Open("capture.json").
//	    MaxTokens(20000).
//	    MinSectionHeight(80).
//	    Chunks()
//
// For advanced use cases, the lower-level capture and chunk packages are
// also available.
package pagecarve

import (
	"github.com/tsawler/pagecarve/chunk"
	"github.com/tsawler/pagecarve/model"
)

// Open prepares a Carver for the given capture file and returns it for
// fluent configuration. The file is not read until a terminal operation
// like Chunks() runs.
//
// Example:
//
//	result, warnings, err := pagecarve.Open("capture.json").Chunks()
func Open(filename string) *Carver {
	return &Carver{
		filename: filename,
		config:   chunk.DefaultConfig(),
		options:  defaultCarveOptions(),
	}
}

// FromPage creates a Carver from an already-loaded page capture. This is
// useful when the capture comes from somewhere other than a file, or when
// several configurations run over the same page.
//
// Example:
//
//	page, err := capture.OpenReader(resp.Body)
//	if err != nil {
//	    // handle error
//	}
//	result, warnings, err := pagecarve.FromPage(page).Chunks()
func FromPage(page *model.PageData) *Carver {
	return &Carver{
		page:       page,
		pageLoaded: true,
		config:     chunk.DefaultConfig(),
		options:    defaultCarveOptions(),
	}
}

// Carve is a convenience that runs the full pipeline over a capture file
// with default configuration.
//
// Example:
//
//	result, warnings, err := pagecarve.Carve("capture.json")
func Carve(filename string) (*chunk.Result, []Warning, error) {
	return Open(filename).Chunks()
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	report := pagecarve.Must(pagecarve.Open("capture.json").Report())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustChunks is a helper that wraps a call to Chunks() or Sections() and
// panics if the error is non-nil. It discards warnings and returns just
// the value. It is intended for use in scripts or tests where error
// handling would be cumbersome.
//
// Example:
//
//	result := pagecarve.MustChunks(pagecarve.Open("capture.json").Chunks())
func MustChunks[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
