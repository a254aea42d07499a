// Package testutil provides environments and assertions for testing stow
// operations.
//
// Key components:
//   - TestEnvironment: source, target and backup roots on a memory or real
//     filesystem, with a matching resolved config
//   - FileTree: declarative package and target contents
//   - Assert helpers for links, regular files and absent paths
//
// Most tests should use EnvMemoryOnly. EnvIsolated runs against the real
// filesystem in a temp directory, for behavior that depends on the OS
// (symlink resolution, permissions).
package testutil
