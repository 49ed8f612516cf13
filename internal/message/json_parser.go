package message

import (
	"fmt"

	"github.com/goccy/go-json"
)

// ParseDynamicJSON parses one observation message into a DynamicMessage.
// Failures wrap ErrJSONUnmarshalFailed.
func ParseDynamicJSON(data []byte) (DynamicMessage, error) {
	var msg DynamicMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJSONUnmarshalFailed, err)
	}
	return msg, nil
}

// Encode serializes an observation message.
func Encode(msg DynamicMessage) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJSONMarshalFailed, err)
	}
	return b, nil
}
