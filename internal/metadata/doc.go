// Package metadata records the inheritance facts of classes: superclass,
// interfaces and declared members with their access flags.
//
// A Store is filled from the primary container and from library
// containers before any class is rewritten, and is only read afterwards.
// Library loading tolerates failures: a library that cannot be read is
// reported and skipped, and resolution falls back to identity where its
// classes would have been consulted.
//
// Library metadata can be cached on disk (msgpack files keyed by a hash of
// the library path, size and modification time), so repeated runs against
// the same libraries skip parsing them.
package metadata
