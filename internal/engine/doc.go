// Package engine defines the capability interface of the external media
// transformation engine and provides its FFmpeg-backed implementation.
//
// The engine is treated as an opaque black box with six operations:
//   - Load: one-time bootstrap from a fixed set of resource locations
//   - On: progress subscription with fractional completion (0.0 to 1.0)
//   - WriteFile, ReadFile, DeleteFile: a private virtual filesystem
//   - Exec: run one filter-graph job against virtual files
//
// The FFmpeg implementation backs the virtual filesystem with a scratch
// directory inside the configured work directory. The work directory is
// guarded by a lock file so that a single process owns it at a time, and the
// scratch directory is purged on Load and Close.
//
// FFmpeg and FFprobe must be installed; candidate locations are probed in
// order and the first binary that answers -version wins.
package engine
