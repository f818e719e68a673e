package ws

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"chat-relay/errors"
)

// Envelope is the wire frame: one JSON object per event, tagged with the
// event name, payload nested under data.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// decode unmarshals and validates an inbound payload. Payloads failing
// required-field validation never reach the relay.
func decode[T any](validate *validator.Validate, data json.RawMessage) (T, error) {
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	if err := validate.Struct(&payload); err != nil {
		return payload, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return payload, nil
}

func encode(name string, e any) (Envelope, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: name, Data: data}, nil
}
