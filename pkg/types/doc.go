// Package types defines the data model shared by the link-deployment engine:
// packages and their file entries, target classifications, conflict and
// backup records, per-package results and the batch report, plus the FS
// interface every component works against.
package types
