// Package remap rewrites a jar container according to mapping documents.
//
// Run loads the mapping documents into rule tables, reads library
// metadata, and then makes two passes over the input container:
//
//  1. Directories are skipped, resources are copied unchanged and every
//     class is parsed and registered in the metadata store.
//  2. Every class is rewritten (concurrently, each on its own copy) and
//     the results are written by a single writer in container order,
//     under the class's new name.
//
// The second pass starts only after the first has registered every class;
// inheritance walks may cross sibling classes of the same container.
//
// Output is written to a temporary file next to the destination and
// renamed into place only when everything succeeded.
//
// Check builds the same tables without writing anything and, given a
// container, audits every rule against the classes it holds.
package remap
