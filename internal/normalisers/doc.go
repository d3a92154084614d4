// Package normalisers turns raw document bytes into text segments.
//
// Each sub-package implements driven.Normaliser for one family of formats.
// Registry selects the highest-priority normaliser for a MIME type, and
// NewDefaultRegistry wires the built-in ones.
package normalisers
