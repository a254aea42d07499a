// Package filesystem provides filesystem implementations for dotstow.
//
// This package contains implementations of the types.FS interface: the
// standard OS filesystem, an adapter over afero backends, and an in-memory
// filesystem with real symlink semantics for tests. It also provides the
// traversal and link resolution helpers the engine classifies targets with.
package filesystem
