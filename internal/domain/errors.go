package domain

import "errors"

var (
	// ErrInvalidInput is returned for malformed or out-of-range request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrScopeViolation is returned when a request references an item or class
	// outside the requester's permitted scope.
	ErrScopeViolation = errors.New("outside permitted scope")
	// ErrNoClassAssigned is returned when a student without a class tries to
	// submit or read a board; an unscoped score cannot be recorded.
	ErrNoClassAssigned = errors.New("student has no class assigned")
	// ErrQuizNotFound indicates the referenced quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrStudentNotFound indicates the student is unknown to the directory.
	ErrStudentNotFound = errors.New("student not found")
	// ErrTeacherNotFound indicates the teacher has no resolvable class.
	ErrTeacherNotFound = errors.New("teacher not found")
	// ErrAttemptsExhausted is returned once a student has used every allowed
	// attempt for a quiz; distinct so clients can show "no attempts remaining".
	ErrAttemptsExhausted = errors.New("no attempts remaining")
)
