// Package diagnostic provides structured errors, warnings and notes
// collected while loading mapping documents, building rule tables and
// rewriting containers.
//
// Key capabilities:
//   - Rule collision reports (class table bijection violations)
//   - Malformed or suspicious mapping declarations
//   - Auxiliary library load failures (recovered, reported as warnings)
//   - Suggestions for unknown class names
package diagnostic
