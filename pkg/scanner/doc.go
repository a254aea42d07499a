// Package scanner computes what stowing a package would do without touching
// anything. It walks a package's source tree, maps every file onto the
// target root and classifies what currently sits at each target path.
//
// The result is a types.Plan, which the linker executes and the status
// inspector reports on.
package scanner
