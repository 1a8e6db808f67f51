// Package property reads named properties and paths out of host values.
//
// An Object gives uniform access over Go values. String-keyed maps are
// dynamic objects; structs, slices, arrays and strings are static objects.
// Reading a property yields a Node, which remembers the object it came from
// and implements pipe.Wrapped so the engine hands back the plain value once a
// pipeline finishes.
//
// A Resolver walks dotted paths with [n] indices and * wildcards:
//
//	r := property.NewResolver(map[string]any{"tenant": tenant})
//	r.Resolve(order, "lines[*].sku", true)  // Collection of every sku
//	r.Resolve(nil, "$tenant.id", false)      // read from a named global
package property
