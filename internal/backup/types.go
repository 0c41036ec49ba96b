package backup

import (
	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/mimeo/internal/rules"
)

// SubjectMarker is appended to every subject directory name.
const SubjectMarker = "[mimeo]"

// TimestampLayout names the per-run destination directory.
const TimestampLayout = "2006-01-02 15_04_05"

// Sentinel errors for rule execution.
var (
	// ErrValidationFailed indicates a rule's inputs were missing or malformed.
	ErrValidationFailed = errors.New("validation failed")

	// ErrAlreadyExists indicates the timestamped destination already exists.
	ErrAlreadyExists = errors.New("destination already exists")

	// ErrCopyFailed indicates at least one copy did not complete.
	ErrCopyFailed = errors.New("copy failed")

	// ErrNotAFile indicates a path expected to be a regular file is not one.
	ErrNotAFile = errors.New("not a regular file")

	// ErrNotADirectory indicates a path expected to be a directory is not one.
	ErrNotADirectory = errors.New("not a directory")

	// ErrVerificationFailed indicates source and destination digests differ
	// or could not be computed.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrUnknownRuleType indicates a record whose type is not File, Folder or Recent.
	ErrUnknownRuleType = errors.New("unknown rule type")
)

// Status is the final state of a rule run.
type Status string

// Rule run statuses.
const (
	StatusSuccess            Status = "Success"
	StatusValidationFailed   Status = "ValidationFailed"
	StatusCopyFailed         Status = "CopyFailed"
	StatusVerificationFailed Status = "VerificationFailed"
)

// FileResult describes one copied file.
type FileResult struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Bytes       int64  `json:"bytes" yaml:"bytes"`

	// CopyError is empty when the copy succeeded.
	CopyError string `json:"copy_error,omitempty" yaml:"copy_error,omitempty"`

	SourceDigest      string `json:"source_digest,omitempty" yaml:"source_digest,omitempty"`
	DestinationDigest string `json:"destination_digest,omitempty" yaml:"destination_digest,omitempty"`

	// Verified is true when both digests were computed and are equal.
	Verified bool `json:"verified" yaml:"verified"`
}

// RunOutcome is the result of running one rule record.
type RunOutcome struct {
	RuleID   string     `json:"rule_id" yaml:"rule_id"`
	RuleType rules.Type `json:"rule_type" yaml:"rule_type"`
	Status   Status     `json:"status" yaml:"status"`

	// Detail is the ordered trail of messages logged for the rule.
	Detail []string `json:"detail" yaml:"detail"`

	// Destination is the timestamped directory, empty if none was created.
	Destination string       `json:"destination,omitempty" yaml:"destination,omitempty"`
	Files       []FileResult `json:"files,omitempty" yaml:"files,omitempty"`
	Bytes       int64        `json:"bytes" yaml:"bytes"`

	// Err is the error behind a failed status, marked with the matching sentinel.
	Err error `json:"-" yaml:"-"`
}

// Failed reports whether the rule did not finish successfully.
func (o RunOutcome) Failed() bool {
	return o.Status != StatusSuccess
}
