// Package linker executes scanner plans: it creates the symlinks that stow a
// package, removes the ones that unstow it, and adopts conflicts through the
// backup store when the caller allows it.
//
// The linker only ever removes a target that is a symlink resolving to the
// package's own source file. Anything else at a target path is left alone
// unless adoption was requested, in which case it is moved into the backup
// root before the link is created.
package linker
