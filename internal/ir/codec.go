package ir

import (
	"bytes"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
)

// Node keys with dedicated struct fields; everything else lands in Extra.
const (
	keyType       = "type"
	keyID         = "id"
	keyFields     = "fields"
	keyInputs     = "inputs"
	keyNext       = "next"
	keyExtraState = "extraState"
	keyMutation   = "mutation"
)

// UnmarshalJSON decodes a node, keeping field and input order and every
// unrecognized key.
func (n *Node) UnmarshalJSON(data []byte) error {
	keys, raw, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("node: %w", err)
	}

	*n = Node{}
	for _, k := range keys {
		v := raw[k]
		switch k {
		case keyType:
			if err := json.Unmarshal(v, &n.Type); err != nil {
				return fmt.Errorf("node type: %w", err)
			}
		case keyID:
			if isNull(v) {
				continue
			}
			if err := json.Unmarshal(v, &n.ID); err != nil {
				return fmt.Errorf("node %q id: %w", n.Type, err)
			}
		case keyFields:
			if err := n.decodeFields(v); err != nil {
				return err
			}
		case keyInputs:
			if err := n.decodeInputs(v); err != nil {
				return err
			}
		case keyNext:
			if isNull(v) {
				continue
			}
			var s Slot
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("node %q next: %w", n.Type, err)
			}
			if !s.Empty() {
				n.Next = &s
			}
		case keyExtraState, keyMutation:
			val, err := UnmarshalIRValue(v)
			if err != nil {
				return fmt.Errorf("node %q %s: %w", n.Type, k, err)
			}
			if k == keyExtraState {
				n.ExtraState = val
			} else {
				n.Mutation = val
			}
		default:
			if n.Extra == nil {
				n.Extra = make(map[string]json.RawMessage)
			}
			n.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}

	if n.Type == "" {
		return fmt.Errorf("node is missing its type")
	}
	return nil
}

func (n *Node) decodeFields(data []byte) error {
	if isNull(data) {
		return nil
	}
	keys, raw, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("node %q fields: %w", n.Type, err)
	}
	for _, k := range keys {
		val, err := UnmarshalIRValue(raw[k])
		if err != nil {
			return fmt.Errorf("node %q field %q: %w", n.Type, k, err)
		}
		n.SetField(k, val)
	}
	return nil
}

func (n *Node) decodeInputs(data []byte) error {
	if isNull(data) {
		return nil
	}
	keys, raw, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("node %q inputs: %w", n.Type, err)
	}
	for _, k := range keys {
		if isNull(raw[k]) {
			continue
		}
		var s Slot
		if err := json.Unmarshal(raw[k], &s); err != nil {
			return fmt.Errorf("node %q input %q: %w", n.Type, k, err)
		}
		n.SetInput(k, &s)
	}
	return nil
}

// MarshalJSON encodes a node with a fixed key order: type, id, extra keys
// (sorted), fields, inputs, next, extraState, mutation.
func (n *Node) MarshalJSON() ([]byte, error) {
	w := &objectWriter{}

	if err := w.value(keyType, n.Type); err != nil {
		return nil, err
	}
	if n.ID != "" {
		if err := w.value(keyID, n.ID); err != nil {
			return nil, err
		}
	}

	extraKeys := make([]string, 0, len(n.Extra))
	for k := range n.Extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		if err := w.raw(k, n.Extra[k]); err != nil {
			return nil, err
		}
	}

	if names := n.FieldNames(); len(names) > 0 {
		fw := &objectWriter{}
		for _, name := range names {
			b, err := MarshalIRValue(n.Fields[name])
			if err != nil {
				return nil, fmt.Errorf("node %q field %q: %w", n.Type, name, err)
			}
			if err := fw.raw(name, b); err != nil {
				return nil, err
			}
		}
		if err := w.raw(keyFields, fw.bytes()); err != nil {
			return nil, err
		}
	}

	if names := n.InputNames(); len(names) > 0 {
		iw := &objectWriter{}
		for _, name := range names {
			if err := iw.value(name, n.Inputs[name]); err != nil {
				return nil, fmt.Errorf("node %q input %q: %w", n.Type, name, err)
			}
		}
		if err := w.raw(keyInputs, iw.bytes()); err != nil {
			return nil, err
		}
	}

	if !n.Next.Empty() {
		if err := w.value(keyNext, n.Next); err != nil {
			return nil, fmt.Errorf("node %q next: %w", n.Type, err)
		}
	}

	for _, meta := range []struct {
		key string
		val IRValue
	}{{keyExtraState, n.ExtraState}, {keyMutation, n.Mutation}} {
		if meta.val == nil {
			continue
		}
		b, err := MarshalIRValue(meta.val)
		if err != nil {
			return nil, fmt.Errorf("node %q %s: %w", n.Type, meta.key, err)
		}
		if err := w.raw(meta.key, b); err != nil {
			return nil, err
		}
	}

	return w.bytes(), nil
}

// objectWriter assembles a JSON object with caller-controlled key order.
type objectWriter struct {
	buf   bytes.Buffer
	count int
}

func (w *objectWriter) key(k string) error {
	if w.count == 0 {
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	w.count++
	kb, err := json.Marshal(k)
	if err != nil {
		return err
	}
	w.buf.Write(kb)
	w.buf.WriteByte(':')
	return nil
}

func (w *objectWriter) raw(k string, v []byte) error {
	if err := w.key(k); err != nil {
		return err
	}
	w.buf.Write(v)
	return nil
}

func (w *objectWriter) value(k string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.raw(k, b)
}

func (w *objectWriter) bytes() []byte {
	if w.count == 0 {
		return []byte("{}")
	}
	out := append([]byte(nil), w.buf.Bytes()...)
	return append(out, '}')
}

// decodeObject decodes a JSON object into raw members and returns the keys
// in document order. A repeated key keeps its first position and its last
// value.
func decodeObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected a JSON object")
	}

	var keys []string
	raw := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected an object key, got %v", tok)
		}
		var member json.RawMessage
		if err := dec.Decode(&member); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", key, err)
		}
		if _, seen := raw[key]; !seen {
			keys = append(keys, key)
		}
		raw[key] = member
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	if dec.More() {
		return nil, nil, fmt.Errorf("unexpected data after object")
	}
	return keys, raw, nil
}

func isNull(data []byte) bool {
	return string(bytes.TrimSpace(data)) == "null"
}
