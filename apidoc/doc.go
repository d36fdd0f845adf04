// Package apidoc defines the entity model for documentation graphs.
//
// Terminology:
//   - value: a program object (module, class, routine, property, or
//     anything else)
//   - variable: a named binding inside a namespace that holds a value
//   - canonical name: the single dotted path chosen to identify a value
//     across one build
//
// A build consumes one or two root graphs of these entities, produced
// externally by a source parser and/or a live inspector. Any field of
// any entity may still be unknown when the graph is handed over; fields
// use the Opt wrapper to keep "unknown" distinct from a known zero
// value.
//
// Two records document the same entity iff they share state: merging
// forwards one handle to the other, so every reference that pointed at
// either original observes all later mutation. Use Resolve/Same rather
// than comparing handles directly.
package apidoc
