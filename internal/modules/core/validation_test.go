package core

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/mediator"

	"github.com/stretchr/testify/require"
)

type validatedRequest struct {
	err error
}

func (r validatedRequest) Validate() error {
	return r.err
}

func Test_RequestValidationBehavior_Rejects_Before_Handler(t *testing.T) {
	// Arrange
	behavior := RequestValidationBehavior{}
	called := false
	next := mediator.RequestHandlerFunc(func(ctx context.Context, request interface{}) (interface{}, error) {
		called = true
		return nil, nil
	})

	// Act
	_, err := behavior.Handle(context.Background(), validatedRequest{err: errors.New("bad")}, next)

	// Assert
	require.False(t, called)
	var commandErr CommandError
	require.ErrorAs(t, err, &commandErr)
	require.Equal(t, http.StatusBadRequest, commandErr.StatusCode)
	require.Equal(t, "bad", commandErr.Message())
}

func Test_RequestValidationBehavior_Passes_Valid_Request(t *testing.T) {
	// Arrange
	behavior := RequestValidationBehavior{}
	next := mediator.RequestHandlerFunc(func(ctx context.Context, request interface{}) (interface{}, error) {
		return "ok", nil
	})

	// Act
	response, err := behavior.Handle(context.Background(), validatedRequest{}, next)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "ok", response)
}

func Test_Validate_Collects_Only_Failures(t *testing.T) {
	require.NoError(t, Validate(nil, nil))

	err := Validate(nil, errors.New("a"), errors.New("b"))

	var validationErr ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.ValidationErrors, 2)
	require.Equal(t, "a; b", err.Error())
}
