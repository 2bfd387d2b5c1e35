package pagecarve

import (
	"github.com/tsawler/pagecarve/chunk"
)

// carveOptions holds facade-level settings that sit outside the chunking
// pipeline's own configuration.
type carveOptions struct {
	// Payload attachment
	attachPayloads bool // fill section HTML, images, and links from the captured markup
	attachStyles   bool // attach the page-level style summary to each section

	// styleLimit caps each style frequency map at its most frequent
	// entries when attaching the summary. Zero keeps every entry.
	styleLimit int
}

// defaultCarveOptions returns the default facade options.
func defaultCarveOptions() carveOptions {
	return carveOptions{
		attachPayloads: true,
		attachStyles:   true,
		styleLimit:     0,
	}
}

// cloneConfig creates a deep copy of a pipeline configuration so that
// chained Carver instances never share tag slices.
func cloneConfig(c chunk.Config) chunk.Config {
	newConfig := c
	newConfig.ContainerTags = append([]string(nil), c.ContainerTags...)
	newConfig.SkipTags = append([]string(nil), c.SkipTags...)
	return newConfig
}
