// Package container reads and writes jar (zip) containers.
//
// Entries are classified by name: names ending in "/" are directories,
// names ending in ".class" are compiled classes, everything else is an
// opaque resource. Resources are copied without decompressing them.
//
// Every entry written by Writer carries the same timestamp, FixedTime, and
// no extended timestamp fields, so two runs over the same input produce
// identical bytes.
package container
