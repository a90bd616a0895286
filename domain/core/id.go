package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// runNamespace scopes name-based run identifiers
var runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("gotimbre/run"))

// ID represents a domain identifier
type ID string

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID    ID
	MethodID ID
	Category ID
)

// String conversions for domain IDs
func (id RunID) String() string    { return ID(id).String() }
func (id MethodID) String() string { return ID(id).String() }
func (c Category) String() string  { return ID(c).String() }

// NewRunID derives a name-based (UUIDv5) run identifier from the input
// fingerprint and the run seed, so the same inputs always name the same run.
func NewRunID(fp Fingerprint, runSeed uint32) RunID {
	name := fmt.Sprintf("%s|%d", fp, runSeed)
	return RunID(uuid.NewSHA1(runNamespace, []byte(name)).String())
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("run ID %q is not a UUID: %w", s, err)
	}
	return RunID(s), nil
}

// CandidateID is the stable identity of a sampled candidate:
// "{method_id}:{sampling_tag}:{running_index}:{template_version}".
//
// Consumers treat it as an opaque key. It never depends on a candidate's
// position in the final pool.
type CandidateID string

func (id CandidateID) String() string { return string(id) }

// NewCandidateID formats a candidate identity
func NewCandidateID(method MethodID, samplingTag string, runningIndex int, templateVersion int) CandidateID {
	return CandidateID(fmt.Sprintf("%s:%s:%d:%d", method, samplingTag, runningIndex, templateVersion))
}

// CandidateIDParts is the decoded form of a CandidateID
type CandidateIDParts struct {
	Method          MethodID
	SamplingTag     string
	RunningIndex    int
	TemplateVersion int
}

// ParseCandidateID splits an identity back into its parts. Method ids may
// themselves contain ':' so the last three fields are split from the right.
func ParseCandidateID(s string) (CandidateIDParts, error) {
	fields := strings.Split(s, ":")
	if len(fields) < 4 {
		return CandidateIDParts{}, fmt.Errorf("%w: %q", ErrInvalidCandidateID, s)
	}
	n := len(fields)
	version, err := strconv.Atoi(fields[n-1])
	if err != nil {
		return CandidateIDParts{}, fmt.Errorf("%w: template version in %q", ErrInvalidCandidateID, s)
	}
	index, err := strconv.Atoi(fields[n-2])
	if err != nil {
		return CandidateIDParts{}, fmt.Errorf("%w: running index in %q", ErrInvalidCandidateID, s)
	}
	method := strings.Join(fields[:n-3], ":")
	if method == "" || fields[n-3] == "" {
		return CandidateIDParts{}, fmt.Errorf("%w: %q", ErrInvalidCandidateID, s)
	}
	return CandidateIDParts{
		Method:          MethodID(method),
		SamplingTag:     fields[n-3],
		RunningIndex:    index,
		TemplateVersion: version,
	}, nil
}
