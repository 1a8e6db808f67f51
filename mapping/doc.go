// Package mapping turns input records into output records by running one
// pipe expression per target field.
//
// A mapping file lists rules:
//
//	rules:
//	  - target: name
//	    source: user.name
//	    pipe: ToUpper
//	  - target: label
//	    sources: [first, middle, last]
//	    pipe: Join " "
//	  - target: tags
//	    source: tags
//	    pipe: First
//
// A rule with one source runs against the field value; a rule with several
// sources runs against the collection of their values. A single source whose
// pipe starts with a collection converter is passed as a one-element
// collection. Sources are dotted paths resolved with the property package;
// missing fields are nil.
package mapping
