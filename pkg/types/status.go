package types

// TargetState classifies what currently occupies a package file's target path
type TargetState int

const (
	// Absent means nothing exists at the target path
	Absent TargetState = iota

	// LinkedToThisSource means the target is a symlink resolving to the source file
	LinkedToThisSource

	// LinkedElsewhere means the target is a symlink resolving somewhere else
	LinkedElsewhere

	// ConflictFile means the target is a regular file (or other non-directory)
	ConflictFile

	// ConflictDir means the target is a directory
	ConflictDir
)

func (s TargetState) String() string {
	switch s {
	case Absent:
		return "absent"
	case LinkedToThisSource:
		return "linked"
	case LinkedElsewhere:
		return "linked-elsewhere"
	case ConflictFile:
		return "conflict-file"
	case ConflictDir:
		return "conflict-dir"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON reports
func (s TargetState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsConflict reports whether linking this target requires moving something away
func (s TargetState) IsConflict() bool {
	return s == LinkedElsewhere || s == ConflictFile || s == ConflictDir
}

// ConflictRecord describes one target path occupied by something other than
// the link the engine would create.
type ConflictRecord struct {
	Package        string      `json:"package"`
	RelativePath   string      `json:"relativePath"`
	TargetAbsolute string      `json:"targetAbsolute"`
	Kind           TargetState `json:"kind"`

	// LinkDest is the resolved destination when Kind is LinkedElsewhere
	LinkDest string `json:"linkDest,omitempty"`

	// BlockedBy is set when a non-directory at an ancestor of the target,
	// rather than the target itself, is in the way. It is target-relative.
	BlockedBy         string `json:"blockedBy,omitempty"`
	BlockedByAbsolute string `json:"blockedByAbsolute,omitempty"`
}

// Occupant returns the relative and absolute path of what has to move before
// the target can be linked.
func (c ConflictRecord) Occupant() (string, string) {
	if c.BlockedBy != "" {
		return c.BlockedBy, c.BlockedByAbsolute
	}
	return c.RelativePath, c.TargetAbsolute
}

// BackupRecord maps a relative path to where its previous occupant was moved.
type BackupRecord struct {
	RelativePath   string `json:"relativePath"`
	BackupAbsolute string `json:"backupAbsolute"`

	// Replaced is set when an older backup at the same path was overwritten
	Replaced bool `json:"replaced,omitempty"`
}

// PlanEntry is one file of a package together with its target classification
type PlanEntry struct {
	FileEntry
	TargetAbsolute string      `json:"targetAbsolute"`
	State          TargetState `json:"state"`
	LinkDest       string      `json:"linkDest,omitempty"`

	BlockedBy         string `json:"blockedBy,omitempty"`
	BlockedByAbsolute string `json:"blockedByAbsolute,omitempty"`
}

// Conflict converts a conflicting entry into a ConflictRecord
func (e PlanEntry) Conflict(pkg string) ConflictRecord {
	return ConflictRecord{
		Package:        pkg,
		RelativePath:   e.RelativePath,
		TargetAbsolute: e.TargetAbsolute,
		Kind:           e.State,
		LinkDest:       e.LinkDest,

		BlockedBy:         e.BlockedBy,
		BlockedByAbsolute: e.BlockedByAbsolute,
	}
}

// Plan is the read-only result of scanning a package: every file entry, in
// lexicographic order of relative path, with its target state.
type Plan struct {
	Package Package     `json:"package"`
	Entries []PlanEntry `json:"entries"`
}

// Conflicts returns the conflicting entries as records, in plan order
func (p *Plan) Conflicts() []ConflictRecord {
	var conflicts []ConflictRecord
	for _, e := range p.Entries {
		if e.State.IsConflict() {
			conflicts = append(conflicts, e.Conflict(p.Package.Name))
		}
	}
	return conflicts
}

// Count returns how many entries are in the given state
func (p *Plan) Count(state TargetState) int {
	n := 0
	for _, e := range p.Entries {
		if e.State == state {
			n++
		}
	}
	return n
}

// PackageStatus is the live link state of a package. Stowed is strict: every
// entry must be LinkedToThisSource. Conflicts lists the relative paths that
// keep it from being stowed, both absent and conflicting ones.
type PackageStatus struct {
	Package   string      `json:"package"`
	Exists    bool        `json:"exists"`
	Stowed    bool        `json:"stowed"`
	Conflicts []string    `json:"conflicts"`
	Entries   []PlanEntry `json:"entries,omitempty"`

	// Error is set when the package could not be inspected
	Error string `json:"error,omitempty"`
}

// Linked returns how many entries are correctly linked
func (s PackageStatus) Linked() int {
	n := 0
	for _, e := range s.Entries {
		if e.State == LinkedToThisSource {
			n++
		}
	}
	return n
}

// Partial reports whether some but not all entries are linked
func (s PackageStatus) Partial() bool {
	linked := s.Linked()
	return linked > 0 && linked < len(s.Entries)
}

// StatusReport is the status of a set of packages, in request order
type StatusReport struct {
	SourceRoot       string          `json:"sourceRoot"`
	SourceRootExists bool            `json:"sourceRootExists"`
	Packages         []PackageStatus `json:"packages"`
}

// AllStowed is true when every package exists and is stowed
func (r *StatusReport) AllStowed() bool {
	for _, p := range r.Packages {
		if !p.Stowed {
			return false
		}
	}
	return true
}
