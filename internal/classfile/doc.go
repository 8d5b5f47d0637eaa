// Package classfile reads, rewrites and writes compiled JVM class files.
//
// Parsing keeps everything the rewriter does not need to understand as raw
// bytes: attribute payloads, numeric constants and bytecode are carried over
// unchanged, so Parse followed by Bytes reproduces the input exactly.
//
// Renaming happens at the constant pool level. Bytecode refers to pool
// entries by index, so rewriting the entries a class refers to is enough to
// rename every symbolic reference in its method bodies. UTF-8 entries are
// never modified in place: one UTF-8 entry may back several unrelated
// references (a field name and a string literal, say), so a renamed
// reference is pointed at a new or existing entry holding the new text.
//
// Besides pool entries, Remap understands the attributes that embed names
// or descriptors outside the pool's reference entries:
//
//   - Signature (generic signatures on classes, fields and methods)
//   - InnerClasses (simple names of nested classes)
//   - EnclosingMethod
//   - LocalVariableTable and LocalVariableTypeTable inside Code
//   - RuntimeVisible/InvisibleAnnotations, parameter annotations and
//     AnnotationDefault (annotation and enum types, class literals)
//
// SourceFile and SourceDebugExtension are dropped unless Options.KeepSource
// is set.
package classfile
