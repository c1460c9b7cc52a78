package store

import (
	"fmt"

	"github.com/roach88/blockc/internal/ir"
)

// marshalNames stores a name list as canonical JSON TEXT.
func marshalNames(names []string) (string, error) {
	arr := make(ir.IRArray, len(names))
	for i, n := range names {
		arr[i] = ir.IRString(n)
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal names: %w", err)
	}
	return string(data), nil
}

// unmarshalNames reads a name list written by marshalNames.
func unmarshalNames(data string) ([]string, error) {
	v, err := ir.UnmarshalIRValue([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal names: %w", err)
	}
	arr, ok := v.(ir.IRArray)
	if !ok {
		return nil, fmt.Errorf("unmarshal names: expected array, got %T", v)
	}
	var names []string
	for i, item := range arr {
		s, ok := item.(ir.IRString)
		if !ok {
			return nil, fmt.Errorf("unmarshal names: element %d is %T", i, item)
		}
		names = append(names, string(s))
	}
	return names, nil
}
