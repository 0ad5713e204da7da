// Package state holds the application state and the reducer that mutates it.
//
// Reduce is a pure function: given the same state and action it always returns the same
// result, performs no I/O and never mutates its input. Every slice in a State is treated
// as immutable; actions produce new slices (copy on write), so snapshots handed to
// readers stay valid after later dispatches.
//
// The reducer trusts its caller. Validation and referential-integrity checks happen
// before dispatch, in the ledger package.
package state
