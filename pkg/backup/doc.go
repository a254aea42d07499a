// Package backup moves conflicting targets out of the way and puts them back.
//
// The backup root mirrors the target root: a file that sat at
// <target>/.config/git/config is moved to <backup>/.config/git/config.
// Files are always moved with a rename, never copied, so a backup root on a
// different filesystem than the target root fails per file instead of
// silently duplicating data.
//
// Only the most recent occupant of a path is kept. Backing up a path that
// already has a backup replaces the older one and logs a warning.
package backup
