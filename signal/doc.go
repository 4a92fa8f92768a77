// Package signal stores traffic-light timing per (intersection, street).
//
// Registry is the only mutable shared state in the simulation. It is safe for
// concurrent use: Add, Remove and Load take the write lock, reads take the read
// lock. A street with no entry at an intersection is uncontrolled there.
//
// Table is an immutable copy used to compare two configurations without
// mutating the live registry. Both satisfy Source, which is all the flow
// simulator reads.
package signal
