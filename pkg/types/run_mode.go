package types

import (
	"fmt"
	"strings"
)

// Mode selects what the link applier does with a package
type Mode int

const (
	// ModeStow creates missing links and leaves correct ones alone
	ModeStow Mode = iota

	// ModeRestow removes the package's links and creates them again
	ModeRestow

	// ModeUnstow removes links that point into the package
	ModeUnstow
)

func (m Mode) String() string {
	switch m {
	case ModeStow:
		return "stow"
	case ModeRestow:
		return "restow"
	case ModeUnstow:
		return "unstow"
	default:
		return "unknown"
	}
}

// MarshalText renders the mode by name in JSON reports
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseMode parses a mode name
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "stow":
		return ModeStow, nil
	case "restow":
		return ModeRestow, nil
	case "unstow", "delete":
		return ModeUnstow, nil
	default:
		return ModeStow, fmt.Errorf("unknown mode: %s", s)
	}
}

// ConflictResolution decides what happens to a conflicting target on stow
type ConflictResolution int

const (
	// ResolutionAbort records the conflict and skips the file
	ResolutionAbort ConflictResolution = iota

	// ResolutionAdopt backs the conflicting target up and links in its place
	ResolutionAdopt
)

func (r ConflictResolution) String() string {
	if r == ResolutionAdopt {
		return "adopt"
	}
	return "abort"
}
