package capture

import (
	"bytes"
	"strings"
)

// sniffLen is how many leading bytes input classification looks at.
const sniffLen = 512

// inputKind classifies what a capture input actually contains.
type inputKind int

const (
	kindUnknown inputKind = iota
	kindJSON
	kindGzip
	kindHTML
	kindPNG
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// sniff classifies input from its first bytes. Capture files are JSON
// documents, possibly gzip-compressed; the remaining kinds exist so the
// common mix-ups produce a useful error instead of a JSON parse failure.
func sniff(prefix []byte) inputKind {
	if len(prefix) >= 2 && prefix[0] == 0x1F && prefix[1] == 0x8B {
		return kindGzip
	}
	if len(prefix) >= len(pngMagic) && bytes.Equal(prefix[:len(pngMagic)], pngMagic) {
		return kindPNG
	}

	trimmed := bytes.TrimLeft(prefix, " \t\r\n")
	if len(trimmed) == 0 {
		return kindUnknown
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return kindJSON
	}
	if looksLikeHTML(trimmed) {
		return kindHTML
	}
	return kindUnknown
}

// looksLikeHTML reports whether the data opens like a markup document.
func looksLikeHTML(data []byte) bool {
	upper := strings.ToUpper(string(data))
	return strings.HasPrefix(upper, "<!DOCTYPE") ||
		strings.HasPrefix(upper, "<HTML") ||
		strings.HasPrefix(upper, "<?XML")
}
