package tinylog

import (
	"errors"
	"fmt"

	"github.com/coredump-systems/tinylog/internal/tasks"
	"github.com/coredump-systems/tinylog/internal/topics"
)

// ErrCode categorizes the error kinds named in spec.md §7.
type ErrCode string

const (
	ErrCodeOutOfTaskIds    ErrCode = "out of task ids"
	ErrCodeOutOfTopics     ErrCode = "out of topics"
	ErrCodeSinkError       ErrCode = "sink error"
	ErrCodeQueueFull       ErrCode = "queue full"
	ErrCodeRecordTruncated ErrCode = "record truncated"
)

// Error is tinylog's structured error type: an operation, a category, the
// task/topic involved (zero values if not applicable), and an optionally
// wrapped cause.
type Error struct {
	Op     string
	Code   ErrCode
	TaskID tasks.TaskID
	Topic  topics.Topic
	Inner  error
}

func (e *Error) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.TaskID != tasks.Invalid {
		parts = append(parts, fmt.Sprintf("task=%d", e.TaskID))
	}
	if e.Topic != topics.Invalid {
		parts = append(parts, fmt.Sprintf("topic=%d", e.Topic))
	}
	if len(parts) > 0 {
		return fmt.Sprintf("tinylog: %s (%s)", e.Code, parts[0])
	}
	return fmt.Sprintf("tinylog: %s", e.Code)
}

func (e *Error) Unwrap() error {
	return e.Inner
}

// Is supports errors.Is against both another *Error with the same Code and
// the lightweight LogError sentinel constants below.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if le, ok := target.(LogError); ok {
		return string(e.Code) == string(le)
	}
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// LogError is a lightweight sentinel error type for cheap equality checks
// on hot paths that don't need Error's structured context.
type LogError string

func (e LogError) Error() string {
	return string(e)
}

const (
	ErrOutOfTaskIds    LogError = LogError(ErrCodeOutOfTaskIds)
	ErrOutOfTopics     LogError = LogError(ErrCodeOutOfTopics)
	ErrSinkError       LogError = LogError(ErrCodeSinkError)
	ErrQueueFull       LogError = LogError(ErrCodeQueueFull)
	ErrRecordTruncated LogError = LogError(ErrCodeRecordTruncated)
)

// NewError constructs a structured Error.
func NewError(op string, code ErrCode) *Error {
	return &Error{Op: op, Code: code}
}

// NewTaskError constructs a structured Error naming the task involved.
func NewTaskError(op string, taskID tasks.TaskID, code ErrCode) *Error {
	return &Error{Op: op, TaskID: taskID, Code: code}
}

// WrapError wraps inner with operation context, preserving inner's code if
// it was already a *Error.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	var te *Error
	if errors.As(inner, &te) {
		return &Error{Op: op, Code: te.Code, TaskID: te.TaskID, Topic: te.Topic, Inner: inner}
	}
	return &Error{Op: op, Code: ErrCodeSinkError, Inner: inner}
}

// IsCode reports whether err (or anything it wraps) matches code.
func IsCode(err error, code ErrCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
