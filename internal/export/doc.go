// Package export renders stored runs for use outside tapesim: an SVG chart of
// head movement and a single JSON document holding metadata and trace.
package export
