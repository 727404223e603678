package serde

import (
	"errors"
	"fmt"
	"sync"

	"github.com/get-eventually/go-subscriber/message"
)

// ErrUnregisteredType is returned by a Registry asked to deserialize
// a payload whose type has not been registered.
var ErrUnregisteredType = errors.New("serde.Registry: unregistered type")

// Registry deserializes raw payloads into message.Message values,
// using the payload type identifier to pick the right Deserializer.
//
// Registry is safe for concurrent use.
type Registry struct {
	mx            sync.RWMutex
	deserializers map[string]Deserializer[message.Message, []byte]
}

// NewRegistry creates a new, empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		deserializers: make(map[string]Deserializer[message.Message, []byte]),
	}
}

// Register adds the Deserializer to use for payloads of the specified type.
//
// An error is returned if the type has already been registered.
func (r *Registry) Register(messageType string, deserializer Deserializer[message.Message, []byte]) error {
	if deserializer == nil {
		return fmt.Errorf("serde.Registry: nil deserializer provided for type '%s'", messageType)
	}

	r.mx.Lock()
	defer r.mx.Unlock()

	if _, ok := r.deserializers[messageType]; ok {
		return fmt.Errorf("serde.Registry: type '%s' has been already registered", messageType)
	}

	r.deserializers[messageType] = deserializer

	return nil
}

// Deserialize deserializes the payload using the Deserializer registered
// for the specified type.
func (r *Registry) Deserialize(messageType string, data []byte) (message.Message, error) {
	r.mx.RLock()
	deserializer, ok := r.deserializers[messageType]
	r.mx.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w, '%s'", ErrUnregisteredType, messageType)
	}

	msg, err := deserializer.Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("serde.Registry: failed to deserialize '%s', %w", messageType, err)
	}

	return msg, nil
}

// RegisterJSON registers a JSON Deserializer for the message type produced
// by the factory, using the message name as type identifier.
func RegisterJSON[T message.Message](r *Registry, factory func() T) error {
	return r.Register(factory().Name(), AsMessage[T](NewJSONDeserializer(factory)))
}

// AsMessage widens a Deserializer of a concrete message type into
// a Deserializer of message.Message, usable with a Registry.
func AsMessage[T message.Message](deserializer Deserializer[T, []byte]) DeserializerFunc[message.Message, []byte] {
	return Adapt[message.Message, T, []byte](deserializer, func(t T) (message.Message, error) { return t, nil })
}

// Adapt maps the values produced by a Deserializer into another type,
// using the provided mapping function.
func Adapt[Src, Mid, Dst any](deserializer Deserializer[Mid, Dst], fn func(Mid) (Src, error)) DeserializerFunc[Src, Dst] {
	return func(dst Dst) (Src, error) {
		var zeroValue Src

		mid, err := deserializer.Deserialize(dst)
		if err != nil {
			return zeroValue, err //nolint:wrapcheck // Already wrapped by the deserializer.
		}

		src, err := fn(mid)
		if err != nil {
			return zeroValue, fmt.Errorf("serde.Adapt: failed to map deserialized value, %w", err)
		}

		return src, nil
	}
}
