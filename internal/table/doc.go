// Package table holds the rename rule tables and the builder that fills them
// from mapping documents.
//
// There are three namespaces: classes, fields and methods. The class table
// is a bijection kept as two plain maps (old to new, new to old) that are
// always updated together. Field and method tables map a MemberKey on the
// old side to a MemberKey on the new side; the old-side descriptor uses old
// class names and the new-side descriptor uses new class names.
//
// Building happens in two passes over an immutable list of documents:
//
//  1. every class declaration, recursively through nested scopes, goes into
//     the class table;
//  2. with the class table complete, every field and method declaration is
//     rendered through the descriptor codec into the member tables.
//
// Documents are applied in order and later rules overwrite earlier ones,
// which allows a baseline mapping to be refined by an overlay. A built
// Tables value is never mutated afterwards.
package table
