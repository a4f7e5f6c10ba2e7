package core

import (
	"context"
	"strings"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/mediator"
)

type Validator interface {
	Validate() error
}

type ValidationError struct {
	ValidationErrors []error
}

func (e ValidationError) Error() string {
	messages := Map(e.ValidationErrors, func(err error) string { return err.Error() })
	return strings.Join(messages, "; ")
}

// Validate collects every non-nil error into a ValidationError.
func Validate(errs ...error) error {
	var collected []error
	for _, err := range errs {
		if err != nil {
			collected = append(collected, err)
		}
	}

	if len(collected) == 0 {
		return nil
	}

	return ValidationError{ValidationErrors: collected}
}

var _ mediator.PipelineBehavior = (*RequestValidationBehavior)(nil)

// RequestValidationBehavior rejects invalid requests before their handler,
// and so before any transaction, runs.
type RequestValidationBehavior struct{}

func (b *RequestValidationBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	if validator, ok := request.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, NewCommandError(400, err, WithReason("request validation failed"))
		}
	}

	return next(ctx, request)
}
