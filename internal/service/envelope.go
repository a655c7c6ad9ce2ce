package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/dukerupert/adorn/internal/apiclient"
	"github.com/dukerupert/adorn/internal/domain"
)

// envelope is the backend's response wrapper.
type envelope[T any] struct {
	Data    *T     `json:"data"`
	Message string `json:"message,omitempty"`
}

// unwrap returns the payload after checking it against its validate tags.
// A missing payload or one that fails the check is an upstream error; the
// untyped body never reaches callers.
func (e envelope[T]) unwrap(op string) (T, error) {
	var zero T
	if e.Data == nil {
		return zero, errShape(op, errors.New("missing data"))
	}
	if err := checkShape(*e.Data); err != nil {
		return zero, errShape(op, err)
	}
	return *e.Data, nil
}

func errShape(op string, err error) error {
	return domain.WrapError(err, domain.EUPSTREAM, op, "unexpected response shape")
}

// checkShape validates a decoded payload. Structs are validated directly and
// slices element by element; anything else passes.
func checkShape(v any) error {
	if _, raw := v.(json.RawMessage); raw {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return errors.New("nil payload")
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return validate.Struct(rv.Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := checkShape(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}

// call performs one request and unwraps the enveloped payload.
func call[T any](ctx context.Context, api Requester, op, method, path string, body any, opts ...apiclient.RequestOption) (T, error) {
	var env envelope[T]
	if err := api.Do(ctx, method, path, body, &env, opts...); err != nil {
		var zero T
		return zero, relabel(err, op)
	}
	return env.unwrap(op)
}

func get[T any](ctx context.Context, api Requester, op, path string) (T, error) {
	return call[T](ctx, api, op, http.MethodGet, path, nil)
}

// exec performs a request whose response body is not needed.
func exec(ctx context.Context, api Requester, op, method, path string, body any) error {
	if err := api.Do(ctx, method, path, body, nil); err != nil {
		return relabel(err, op)
	}
	return nil
}

// relabel replaces the transport-level op ("api.get") with the service op so
// logs name the operation that failed. Code and message are kept.
func relabel(err error, op string) error {
	var e *domain.Error
	if errors.As(err, &e) {
		return &domain.Error{Code: e.Code, Op: op, Message: e.Message, Err: e.Err}
	}
	return err
}
