// Package mediator dispatches typed requests to their registered handlers
// through a chain of pipeline behaviors.
//
// Handlers are registered once, at composition time, keyed by the request
// type. Behaviors wrap every dispatched request in registration order: the
// first registered behavior is the outermost one.
package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	ErrHandlerNotFound          = errors.New("no handler registered for request type")
	ErrHandlerAlreadyRegistered = errors.New("handler already registered for request type")
	ErrUnexpectedResponseType   = errors.New("handler returned unexpected response type")
)

type RequestHandler[TRequest any, TResponse any] interface {
	Handle(ctx context.Context, request TRequest) (TResponse, error)
}

type RequestHandlerFunc func(ctx context.Context, request interface{}) (interface{}, error)

type PipelineBehavior interface {
	Handle(ctx context.Context, request interface{}, next RequestHandlerFunc) (interface{}, error)
}

type Mediator struct {
	mu        sync.RWMutex
	handlers  map[reflect.Type]RequestHandlerFunc
	behaviors []PipelineBehavior
}

func New() *Mediator {
	return &Mediator{handlers: make(map[reflect.Type]RequestHandlerFunc)}
}

func (m *Mediator) RegisterPipelineBehavior(behavior PipelineBehavior) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.behaviors = append(m.behaviors, behavior)
}

func RegisterRequestHandler[TRequest any, TResponse any](
	m *Mediator,
	handler RequestHandler[TRequest, TResponse],
) error {
	requestType := reflect.TypeOf((*TRequest)(nil)).Elem()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, found := m.handlers[requestType]; found {
		return fmt.Errorf("%s: %w", requestType, ErrHandlerAlreadyRegistered)
	}

	m.handlers[requestType] = func(ctx context.Context, request interface{}) (interface{}, error) {
		typed, ok := request.(TRequest)
		if !ok {
			return nil, fmt.Errorf("invalid request type %T for handler of %s", request, requestType)
		}
		return handler.Handle(ctx, typed)
	}

	return nil
}

func Send[TRequest any, TResponse any](
	m *Mediator,
	ctx context.Context,
	request TRequest,
) (TResponse, error) {
	var response TResponse

	requestType := reflect.TypeOf((*TRequest)(nil)).Elem()

	m.mu.RLock()
	handler, found := m.handlers[requestType]
	behaviors := m.behaviors
	m.mu.RUnlock()

	if !found {
		return response, fmt.Errorf("%s: %w", requestType, ErrHandlerNotFound)
	}

	next := handler
	for i := len(behaviors) - 1; i >= 0; i-- {
		next = wrap(behaviors[i], next)
	}

	result, err := next(ctx, request)
	if err != nil {
		return response, err
	}

	if result == nil {
		return response, nil
	}

	typed, ok := result.(TResponse)
	if !ok {
		return response, fmt.Errorf("%T: %w", result, ErrUnexpectedResponseType)
	}

	return typed, nil
}

func wrap(behavior PipelineBehavior, next RequestHandlerFunc) RequestHandlerFunc {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return behavior.Handle(ctx, request, next)
	}
}

// RequestName returns a short, stable name for a request value, used in logs
// and span names.
func RequestName(request interface{}) string {
	t := reflect.TypeOf(request)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}
