// Package fsutil holds the filesystem primitives the distribution pipeline is
// built from: an idempotent ensure-clean-directory, recursive copies that
// preserve permissions, and a move that survives cross-device renames.
//
// All operations are synchronous; when a function returns, its effects are on
// disk.
package fsutil
