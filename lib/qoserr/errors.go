// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package qoserr

import (
	"errors"
	"fmt"
)

// Sentinel errors for each failure kind.
var (
	ErrParameter    = errors.New("invalid parameter")
	ErrNotFound     = errors.New("not found")
	ErrNotSupported = errors.New("not supported")
	ErrCapacity     = errors.New("output capacity exceeded")
	ErrAllocation   = errors.New("allocation refused")
)

// Error is a failure from a named query operation. Kind is one of the
// package sentinels; Detail describes the offending value.
//
// Callers can use errors.As to extract the operation:
//
//	var queryErr *qoserr.Error
//	if errors.As(err, &queryErr) {
//	    log.Printf("%s failed", queryErr.Op)
//	}
type Error struct {
	// Op is the qualified operation name (e.g., "topology.SocketOf").
	Op string
	// Kind is the sentinel this error unwraps to.
	Kind error
	// Detail is a short human-readable description. May be empty.
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Detail)
}

// Unwrap returns the sentinel kind so errors.Is matches it.
func (e *Error) Unwrap() error {
	return e.Kind
}

// New returns an *Error for op with the given kind and formatted detail.
func New(op string, kind error, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Parameter returns an ErrParameter failure for op.
func Parameter(op, format string, args ...any) *Error {
	return New(op, ErrParameter, format, args...)
}

// NotFound returns an ErrNotFound failure for op.
func NotFound(op, format string, args ...any) *Error {
	return New(op, ErrNotFound, format, args...)
}

// NotSupported returns an ErrNotSupported failure for op.
func NotSupported(op, format string, args ...any) *Error {
	return New(op, ErrNotSupported, format, args...)
}

// Capacity returns an ErrCapacity failure reporting how many results
// were found against the buffer size the caller provided.
func Capacity(op string, needed, capacity int) *Error {
	return New(op, ErrCapacity, "need %d slots, have %d", needed, capacity)
}

// Is reports whether err is of the given kind. It is errors.Is with the
// argument order callers tend to read naturally in switch statements.
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}

// KindOf returns the sentinel kind wrapped by err, or nil when err is
// nil or not a classified failure.
func KindOf(err error) error {
	for _, kind := range []error{ErrParameter, ErrNotFound, ErrNotSupported, ErrCapacity, ErrAllocation} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
