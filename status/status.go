// Package status defines the error taxonomy shared by the client-side
// packages. Callers pattern-match on the Code of an error rather than on
// message text, mirroring how fabric-sdk-go classifies failures with its
// status codes.
package status

import (
	"errors"
	"fmt"
)

// Code identifies a failure class.
type Code int32

const (
	// Unknown is any failure not covered by the taxonomy.
	Unknown Code = iota
	// AdminIdentityMissing means enrollment was attempted without an admin
	// identity in the store. Not retryable without external provisioning.
	AdminIdentityMissing
	// CAEnrollmentFailure means the certificate authority rejected or could
	// not be reached for a register/enroll call.
	CAEnrollmentFailure
	// UnknownIdentity means a session was requested for a label absent from
	// the identity store.
	UnknownIdentity
	// ConnectionFailure is a transport or discovery failure opening or using
	// a gateway session.
	ConnectionFailure
	// CampaignNotFound is the business error for operations against a
	// nonexistent campaign id.
	CampaignNotFound
	// MVCCConflict means commit was rejected because a concurrent
	// transaction invalidated this transaction's read set.
	MVCCConflict
	// StoreUnavailable is an identity store I/O failure.
	StoreUnavailable
	// TransactionFailure is any other contract or commit failure.
	TransactionFailure
)

var codeNames = map[Code]string{
	Unknown:              "Unknown",
	AdminIdentityMissing: "AdminIdentityMissing",
	CAEnrollmentFailure:  "CAEnrollmentFailure",
	UnknownIdentity:      "UnknownIdentity",
	ConnectionFailure:    "ConnectionFailure",
	CampaignNotFound:     "CampaignNotFound",
	MVCCConflict:         "MVCCConflict",
	StoreUnavailable:     "StoreUnavailable",
	TransactionFailure:   "TransactionFailure",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return codeNames[Unknown]
}

// Retryable reports whether the submission layer may retry the failed call.
// Only commit-time version conflicts qualify; everything else is surfaced.
func (c Code) Retryable() bool {
	return c == MVCCConflict
}

// Status carries a failure class alongside the message and cause.
type Status struct {
	Code    Code
	Message string
	cause   error
}

func (s *Status) Error() string {
	if s.cause != nil {
		return fmt.Sprintf("%s: %s: %s", s.Code, s.Message, s.cause)
	}
	return fmt.Sprintf("%s: %s", s.Code, s.Message)
}

func (s *Status) Unwrap() error {
	return s.cause
}

// New returns a Status with the given code and message.
func New(code Code, message string) *Status {
	return &Status{Code: code, Message: message}
}

// Errorf returns a Status with a formatted message.
func Errorf(code Code, format string, args ...interface{}) *Status {
	return &Status{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause wraps cause under the given code and message. The cause remains
// reachable through errors.Unwrap.
func WithCause(code Code, cause error, message string) *Status {
	return &Status{Code: code, Message: message, cause: cause}
}

// FromError returns the Status carried by err, if any.
func FromError(err error) (*Status, bool) {
	var s *Status
	if errors.As(err, &s) {
		return s, true
	}
	return nil, false
}

// CodeOf returns the Code carried by err, or Unknown.
func CodeOf(err error) Code {
	if s, ok := FromError(err); ok {
		return s.Code
	}
	return Unknown
}
