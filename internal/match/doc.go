// Package match ranks candidate names by edit distance.
//
// It backs the "did you mean" suggestions attached to diagnostics when a
// mapping document names a class that the checked container does not
// contain. Names are compared case-insensitively, both whole and by their
// last segment, so a class that only moved packages still scores high.
package match
