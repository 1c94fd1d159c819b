package tool

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// decodeArgs converts a raw argument map to a typed struct. Weakly typed
// decoding tolerates JSON numbers arriving as float64 for integer fields.
func decodeArgs(args map[string]any, target any) error {
	if args == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}

	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("failed to decode args: %w", err)
	}

	return nil
}
