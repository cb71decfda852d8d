// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: The stable JSON wire format of a diff report
//   - FullJSONWriter: The wire format wrapped with comparison metadata
//   - MarkdownWriter: Markdown with tables, alerts and a mermaid chart
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output. The JSON wire
// format is pinned by an embedded JSON Schema, see ValidateJSON.
package report
