package errors

import (
	"regexp"
	"unicode"
)

// maxNodeIDLength bounds node identifiers coming from untrusted input.
const maxNodeIDLength = 256

// ValidateNodeID validates a node identifier from external input (API
// payloads, CLI edge lists). It rejects identifiers that would break
// serialization or render output.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNode, "node id cannot be empty")
	}

	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidNode, "node id too long (max %d characters)", maxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNode, "node id contains invalid control characters")
		}
	}

	return nil
}

// ValidateEdgeEndpoints validates the endpoints of a single edge.
// Self-referential edges are rejected up front so that callers fail with a
// clear message instead of a generic build error.
func ValidateEdgeEndpoints(from, to string) error {
	if err := ValidateNodeID(from); err != nil {
		return err
	}
	if err := ValidateNodeID(to); err != nil {
		return err
	}
	if from == to {
		return New(ErrCodeInvalidEdge, "edge %q -> %q is self-referential", from, to)
	}
	return nil
}

// snapshotIDRegex matches RFC 4122 UUIDs in their canonical text form.
var snapshotIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateSnapshotID validates a snapshot identifier. Snapshot IDs are
// lowercase canonical UUIDs; anything else is rejected before it reaches
// the store layer.
func ValidateSnapshotID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "snapshot id cannot be empty")
	}

	if !snapshotIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid snapshot id: %q", id)
	}

	return nil
}
