// Package preview manages the transient, in-memory preview handles that back
// the source and result players.
//
// A Registry has two independently owned slots. Storing a handle in a slot
// releases whatever the slot held before, under the same lock, so a
// superseded handle can never outlive its replacement. Released handles are
// dropped from lookup and their buffers are discarded; releasing twice is a
// no-op.
package preview
