// Package resolve answers "what is this symbol called after remapping".
//
// A Context binds the rule tables to the class metadata for one remap run.
// Class names go through the class table, with nested classes falling back
// to their enclosing class's rule. Member names are looked up directly
// first; a miss on a member that can be inherited (neither private nor
// static) walks the owner's superclass and then its interfaces in
// declaration order, depth first, and the first rule found wins. A member
// with no rule anywhere keeps its name.
//
// Contexts are immutable after construction and safe for concurrent use;
// top-level member lookups are memoized in a bounded LRU cache.
package resolve
