package core

import "fmt"

type Unit struct{}

// CommandError rejects a request at the boundary with an explicit status code.
type CommandError struct {
	Payload    interface{}
	StatusCode int
	Reason     *string
}

type CommandErrorOption func(*CommandError)

func WithReason(reason string) CommandErrorOption {
	return func(e *CommandError) {
		e.Reason = &reason
	}
}

func NewCommandError(statusCode int, payload interface{}, opts ...CommandErrorOption) CommandError {
	e := CommandError{
		StatusCode: statusCode,
		Payload:    payload,
	}

	for _, opt := range opts {
		opt(&e)
	}

	return e
}

// Message is the text shown to the client.
func (r CommandError) Message() string {
	if err, ok := r.Payload.(error); ok {
		return err.Error()
	}

	if s, ok := r.Payload.(string); ok && s != "" {
		return s
	}

	if r.Reason != nil {
		return *r.Reason
	}

	return fmt.Sprintf("%v", r.Payload)
}

func (r CommandError) Error() string {
	var values struct {
		Payload    interface{}
		StatusCode int
		Reason     string
	}

	values.Payload = r.Payload
	values.StatusCode = r.StatusCode

	if r.Reason != nil {
		values.Reason = *r.Reason
	}

	return fmt.Sprintf("%+v", values)
}

func (r CommandError) Unwrap() error {
	if err, ok := r.Payload.(error); ok {
		return err
	}
	return nil
}
