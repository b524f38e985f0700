// Package session owns the lazily constructed transcoding engine for the
// lifetime of the process.
//
// The first caller of EnsureReady triggers the bootstrap. Callers arriving
// while the bootstrap is in flight wait for the same attempt instead of
// starting another one, and a caller whose context ends while waiting
// returns early without cancelling the shared bootstrap. A failed bootstrap
// is recorded and returned to every later caller; recovering requires a new
// process.
//
// Engine progress arrives as fractions and is mapped to whole percentages
// capped at MaxProgress, leaving the tail of the bar for finalization. The
// mapped values are delivered to at most one watcher at a time (see Watch).
package session
