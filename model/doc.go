// Package model provides the data representation for captured web pages.
//
// This package defines the types that the page-capture boundary decodes
// into and that the chunking pipeline consumes. It holds geometry
// primitives, the DOM node arena, page-level metadata, and style
// aggregation; it performs no I/O and no analysis of its own.
//
// # Page Data
//
// The [PageData] type represents one captured page: metadata, the DOM
// tree, the raw HTML, and the full-page screenshot:
//
//	page := model.NewPageData()
//	page.Metadata.PageHeight = 5000
//
// # The Node Arena
//
// The captured DOM is stored as a flat arena in [Tree]: every [Node] is
// a value in Tree.Nodes, and parent/child links are [NodeID] indices
// rather than pointers. IDs follow depth-first document order, so the
// root is 0 and a parent's ID is always below its descendants'. The
// arena is never modified after decoding; downstream components derive
// their own records and reference nodes by NodeID only.
//
//	root := tree.Node(tree.Root())
//	for _, child := range root.Children {
//	    // ...
//	}
//
// # Geometry
//
// Geometric primitives use browser layout coordinates (origin top-left,
// Y growing downward):
//
//   - [Rect] - rectangle with overlap area, vertical/horizontal overlap,
//     intersection, and union calculations
//   - [Point] - 2D point with distance calculation
//
// # Style Aggregation
//
// [SummarizeStyles] reduces the per-node style snapshots into a
// [StyleSummary] of value frequencies (colors, fonts, display and
// position types), the global styling context shipped to downstream
// consumers.
package model
