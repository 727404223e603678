package serde

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NewJSONSerializer returns a Serializer encoding entry payloads as JSON.
func NewJSONSerializer[T any]() SerializerFunc[T, []byte] {
	return func(t T) ([]byte, error) {
		data, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("serde.JSON: failed to serialize %T, %w", t, err)
		}

		return data, nil
	}
}

// NewJSONDeserializer returns a Deserializer decoding JSON entry payloads
// into new instances of T, created through the factory.
//
// Entries carrying no payload decode to the value returned by the factory,
// so that marker events need no body in the log.
func NewJSONDeserializer[T any](factory func() T) DeserializerFunc[T, []byte] {
	return func(data []byte) (T, error) {
		model := factory()

		if len(bytes.TrimSpace(data)) == 0 {
			return model, nil
		}

		if err := json.Unmarshal(data, &model); err != nil {
			var zeroValue T
			return zeroValue, fmt.Errorf("serde.JSON: failed to deserialize %T, %w", model, err)
		}

		return model, nil
	}
}

// NewJSON returns a serde for entry payloads of type T encoded as JSON.
func NewJSON[T any](factory func() T) Fused[T, []byte] {
	return Fuse[T, []byte](
		NewJSONSerializer[T](),
		NewJSONDeserializer(factory),
	)
}
