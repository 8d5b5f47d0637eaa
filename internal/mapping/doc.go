// Package mapping provides the declaration tree of a rename mapping document,
// the text and YAML front ends that produce it, and structural validation.
//
// A mapping document declares how classes, fields and methods are renamed
// between two naming schemes (commonly an obfuscated one and a readable one).
// The tree is consumed by the table builder; this package never decides what
// a rename means, it only describes what the document says.
//
// # Text format
//
//	# comment
//	class a.b.C -> x.y.Z {
//	    int foo -> bar;                         // field rule
//	    void run(int, java.lang.String[]) -> execute;
//	    a.b.C self;                             // declared, no rule
//	    class Inner -> Named {                  // nested class a/b/C$Inner
//	        long[][] grid -> cells;
//	    }
//	}
//	class d.E;
//
// Top-level class names are dotted. Nested declarations take a single
// segment. A type reference to a nested class is written with '$'
// (a.b.C$Inner). Comments start with '#' or '//' and run to end of line.
//
// # YAML format
//
//	version: "1"
//	classes:
//	  - old: a.b.C
//	    new: x.y.Z
//	    fields:
//	      - {old: foo, new: bar, type: int}
//	    methods:
//	      - {old: run, new: execute, params: [int, "java.lang.String[]"], returns: void}
//	    classes:
//	      - {old: Inner, new: Named}
//
// Type strings use the same grammar as the text format: a primitive keyword
// or a dotted class name, followed by any number of "[]" pairs.
//
// # Types
//
// Type is a closed union of Primitive, ClassType and ArrayType. A
// multi-dimensional array is an ArrayType whose element is another
// ArrayType. A method result of nil means void.
package mapping
