package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/strata/internal/ir"
)

// marshalArgs converts command args to canonical JSON TEXT for storage.
func marshalArgs(args ir.Object) (string, error) {
	if args == nil {
		args = ir.Object{}
	}
	data, err := ir.MarshalCanonical(args)
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return string(data), nil
}

// unmarshalArgs parses canonical JSON TEXT back into command args.
// Integers go through json.Number so large nanosecond values survive.
func unmarshalArgs(data string) (ir.Object, error) {
	if data == "" || data == "{}" {
		return ir.Object{}, nil
	}
	var obj ir.Object
	if err := obj.UnmarshalJSON([]byte(data)); err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	return obj, nil
}

// marshalProfile stores an export profile; nil is stored as "".
func marshalProfile(p *ir.Profile) (string, error) {
	if p == nil {
		return "", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}
	return string(data), nil
}

func unmarshalProfile(data string) (*ir.Profile, error) {
	if data == "" {
		return nil, nil
	}
	var p ir.Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &p, nil
}

// marshalCondensed stores a condensed view as a JSON array of object IDs.
func marshalCondensed(ids []string) (string, error) {
	data, err := ir.MarshalCanonical(ir.Strings(ids...))
	if err != nil {
		return "", fmt.Errorf("marshal condensed: %w", err)
	}
	return string(data), nil
}

func unmarshalCondensed(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal condensed: %w", err)
	}
	return ids, nil
}
