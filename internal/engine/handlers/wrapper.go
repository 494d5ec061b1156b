package handlers

import (
	"fmt"

	"gridsync/pkg/api"

	"github.com/vmihailenco/msgpack/v5"
)

// TypedHandlerFunc - это "чистый" хендлер, который работает с готовой структурой T
type TypedHandlerFunc[T any] func(ctx Context, payload T) (Result, error)

// EmptyHandlerFunc - хендлер, которому НЕ нужны данные (AUTO_ATTACK)
type EmptyHandlerFunc func(ctx Context) (Result, error)

// WithPayload берет "чистый" хендлер и превращает его в стандартный HandlerFunc.
// Она берет на себя распаковку msgpack и Validate.
func WithPayload[T any](handler TypedHandlerFunc[T]) HandlerFunc {
	return func(ctx Context, raw msgpack.RawMessage) (Result, error) {
		var payload T

		if len(raw) == 0 {
			return Result{}, fmt.Errorf("empty payload for %T", payload)
		}

		// api.Decode сам вызывает Validate, если T его реализует
		if err := api.Decode(raw, &payload); err != nil {
			return Result{}, fmt.Errorf("invalid payload format: %w", err)
		}

		return handler(ctx, payload)
	}
}

// WithEmptyPayload - обертка для команд без данных
func WithEmptyPayload(handler EmptyHandlerFunc) HandlerFunc {
	return func(ctx Context, _ msgpack.RawMessage) (Result, error) {
		// Данные игнорируются: логике они не нужны.
		return handler(ctx)
	}
}
