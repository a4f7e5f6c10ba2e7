package core

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/lib/pq"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindConflict
	KindTransient
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Two errors match under errors.Is when their
// kinds are equal and the target's subject is empty or equal.
type Error struct {
	Kind    ErrorKind
	Subject string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}

	switch e.Kind {
	case KindNotFound:
		return e.Subject + " not found"
	case KindTransient:
		if e.Err != nil {
			return "transient store failure: " + e.Err.Error()
		}
		return "transient store failure"
	case KindValidation:
		return "invalid " + e.Subject
	default:
		return e.Subject
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Subject == "" || t.Subject == e.Subject)
}

// WithMessage returns a copy of e carrying a user-facing message.
func (e *Error) WithMessage(message string) *Error {
	c := *e
	c.Message = message
	return &c
}

func NotFound(subject string) *Error {
	return &Error{Kind: KindNotFound, Subject: subject}
}

func Conflict(subject string) *Error {
	return &Error{Kind: KindConflict, Subject: subject}
}

func Validation(subject string) *Error {
	return &Error{Kind: KindValidation, Subject: subject}
}

func Transient(err error) *Error {
	return &Error{Kind: KindTransient, Subject: "store", Err: err}
}

// Kind sentinels for errors.Is checks that ignore the subject.
var (
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrValidation = &Error{Kind: KindValidation}
	ErrTransient  = &Error{Kind: KindTransient}
)

func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

const (
	pqUniqueViolation   pq.ErrorCode = "23505"
	pqLockNotAvailable  pq.ErrorCode = "55P03"
	pqQueryCanceled     pq.ErrorCode = "57014"
	pqCheckViolation    pq.ErrorCode = "23514"
	pqForeignKeyMissing pq.ErrorCode = "23503"
)

// ClassifyStoreError turns driver failures that are safe to retry into
// Transient errors. Classified errors and caller cancellation pass through.
func ClassifyStoreError(err error) error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return err
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	if isTransient(err) {
		return Transient(err)
	}

	return err
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	if pqErr.Code == pqLockNotAvailable || pqErr.Code == pqQueryCanceled {
		return true
	}

	switch pqErr.Code.Class() {
	case "40", "08", "53", "57":
		return true
	}

	return false
}

func IsUniqueViolation(err error) bool {
	return hasCode(err, pqUniqueViolation)
}

func IsCheckViolation(err error) bool {
	return hasCode(err, pqCheckViolation)
}

func IsForeignKeyViolation(err error) bool {
	return hasCode(err, pqForeignKeyMissing)
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
