// Package skerr provides an error type which can carry a call stack and
// extra context, and helpers for wrapping errors as they cross package
// boundaries.
package skerr

import (
	"fmt"
	"runtime"
)

// maxStackDepth is the maximum number of stack frames recorded per error.
const maxStackDepth = 32

// StackTraceFrame identifies a single frame in a recorded call stack.
type StackTraceFrame struct {
	File string
	Line int
}

func (f StackTraceFrame) String() string {
	return fmt.Sprintf("%s:%d", f.File, f.Line)
}

// ErrorWithContext is an error that records where it was created or wrapped,
// and optionally a context message describing what the caller was doing.
type ErrorWithContext struct {
	Wrapped   error
	CallStack []StackTraceFrame
	Context   string
}

// Error implements the error interface.
func (e *ErrorWithContext) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Wrapped.Error()
	}
	return e.Wrapped.Error()
}

// Unwrap allows errors.Is and errors.As to see through the wrapper.
func (e *ErrorWithContext) Unwrap() error {
	return e.Wrapped
}

// callStack returns the call stack of the caller, skipping the given number
// of frames.
func callStack(skip int) []StackTraceFrame {
	rv := make([]StackTraceFrame, 0, maxStackDepth)
	for i := skip; i < skip+maxStackDepth; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		rv = append(rv, StackTraceFrame{File: file, Line: line})
	}
	return rv
}

// Fmt is like fmt.Errorf, but the returned error records the call stack of
// the caller.
func Fmt(format string, args ...interface{}) error {
	return &ErrorWithContext{
		Wrapped:   fmt.Errorf(format, args...),
		CallStack: callStack(2),
	}
}

// Wrap returns an error that records the call stack of the caller. Returns
// nil when err is nil, so the result of a fallible call can be wrapped
// unconditionally.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return &ErrorWithContext{
		Wrapped:   err,
		CallStack: callStack(2),
	}
}

// Wrapf is like Wrap, but adds a context message; the message is prepended
// to the wrapped error's message, separated by a colon.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ErrorWithContext{
		Wrapped:   err,
		CallStack: callStack(2),
		Context:   fmt.Sprintf(format, args...),
	}
}

// Unwrap returns the innermost error if err is one or more nested
// ErrorWithContext, or err itself otherwise.
func Unwrap(err error) error {
	for {
		wrapper, ok := err.(*ErrorWithContext)
		if !ok {
			return err
		}
		err = wrapper.Wrapped
	}
}
