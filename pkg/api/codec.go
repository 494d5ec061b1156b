package api

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode сериализует сообщение в msgpack.
func Encode(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("msgpack encode %T: %w", v, err)
	}
	return data, nil
}

// Decode разбирает msgpack в v и, если v реализует Validator, проверяет результат.
func Decode(data []byte, v any) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("msgpack decode %T: %w", v, err)
	}
	if val, ok := v.(Validator); ok {
		if err := val.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return nil
}
