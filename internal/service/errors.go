package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Guard and lifecycle failures. Handlers translate these into HTTP status
// codes; services never leak raw store errors across the boundary.
var (
	// ErrUnauthorized indicates no authenticated session exists.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden indicates the caller is authenticated but lacks the role,
	// ownership, or enrollment the operation requires.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrIdentityLookup indicates the identity check itself failed, as
	// opposed to the caller simply not being logged in.
	ErrIdentityLookup = errors.New("identity lookup failed")
	// ErrProfileLookup indicates the profile read behind a role check failed.
	ErrProfileLookup = errors.New("profile lookup failed")

	// ErrProfileNotFound indicates no profile row exists for the principal.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrCourseNotFound indicates the requested course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrAssignmentNotFound indicates the assignment does not exist in the
	// referenced course.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrSubmissionNotFound indicates the submission does not exist under the
	// referenced assignment.
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrNotEnrolled indicates the learner has no enrollment for the course.
	// Enrollment absence is a permission fact, not a missing resource.
	ErrNotEnrolled = errors.New("not enrolled in this course")
	// ErrAlreadyEnrolled indicates a duplicate enrollment for the same pair.
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	// ErrAlreadySubmitted indicates the learner already submitted to the
	// assignment; submissions are never merged or retried.
	ErrAlreadySubmitted = errors.New("assignment already submitted")

	// ErrAssignmentNotOpen indicates the assignment is not published. The
	// submission-window blocks are permission facts, so all three wrap
	// ErrForbidden.
	ErrAssignmentNotOpen = fmt.Errorf("%w: assignment is not accepting submissions", ErrForbidden)
	// ErrPastDue indicates the due date passed and late submission is not allowed.
	ErrPastDue = fmt.Errorf("%w: past due and late submission is not allowed", ErrForbidden)
	// ErrLateWindowClosed indicates even the late submission window has passed.
	ErrLateWindowClosed = fmt.Errorf("%w: late submission window has closed", ErrForbidden)
	// ErrAlreadyOnboarded indicates the account role was already assigned.
	ErrAlreadyOnboarded = errors.New("role has already been assigned")
)

// FieldErrors maps an input field to its first violation message.
type FieldErrors map[string]string

// ValidationError reports input schema violations. Operations that return it
// have performed no store access.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid input"
	}

	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s %s", field, e.Fields[field]))
	}

	return "invalid input: " + strings.Join(parts, "; ")
}

// PersistenceError wraps a store failure that happened after validation
// passed. Callers decide whether to retry; the services never do.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
