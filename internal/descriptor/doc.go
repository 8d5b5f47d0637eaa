// Package descriptor translates between mapping-document type nodes and
// class-file type descriptors.
//
// Render and RenderMethod produce descriptors from declaration-tree types,
// applying a class-name translation in the requested direction. Remap and
// RemapType rewrite the class names inside an existing binary descriptor and
// are used by the class rewriter.
package descriptor
