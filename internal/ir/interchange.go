package ir

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
)

// DefaultContainerKey wraps a document in the canonical interchange format.
const DefaultContainerKey = "mod"

// maxWrapperDepth bounds how deeply nested wrapper objects are searched.
const maxWrapperDepth = 4

// preferredWrapperKeys are searched before any other key of a wrapper.
var preferredWrapperKeys = []string{DefaultContainerKey, "workspace", "document", "program", "data"}

// ParseError reports input that is not a block document at all.
// It is the only hard failure of the import path.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse document: %s: %v", e.Message, e.Err)
	}
	return "parse document: " + e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errNoBlocks = errors.New("no blocks found")

// ParseDocument decodes the plain document shape
// {"blocks": {...}, "variables": [...]}.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, &ParseError{Message: "invalid document JSON", Err: err}
	}
	return doc, nil
}

// ParseInterchange decodes any accepted document shape and normalizes it:
// the plain document, a {"<key>": {blocks, variables}} wrapper, a bare array
// of nodes, {"blocks": [nodes]}, or a document nested under an alternate key.
func ParseInterchange(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Document{}, &ParseError{Message: "empty input"}
	}
	if !json.Valid(trimmed) {
		return Document{}, &ParseError{Message: "input is not valid JSON"}
	}

	switch trimmed[0] {
	case '[':
		nodes, err := decodeNodes(trimmed)
		if err != nil {
			return Document{}, &ParseError{Message: "invalid block array", Err: err}
		}
		return NewDocument(nodes), nil
	case '{':
		doc, err := fromObject(trimmed, 0)
		if errors.Is(err, errNoBlocks) {
			return Document{}, &ParseError{Message: "no blocks found in input"}
		}
		if err != nil {
			return Document{}, &ParseError{Message: "invalid document", Err: err}
		}
		return doc, nil
	default:
		return Document{}, &ParseError{Message: "expected a JSON object or array"}
	}
}

func fromObject(data []byte, depth int) (Document, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return Document{}, err
	}

	if blocks, ok := obj["blocks"]; ok {
		return documentFromParts(blocks, obj["variables"])
	}
	if depth >= maxWrapperDepth {
		return Document{}, errNoBlocks
	}

	for _, k := range wrapperKeys(obj) {
		inner := bytes.TrimSpace(obj[k])
		if len(inner) == 0 {
			continue
		}
		switch inner[0] {
		case '{':
			doc, err := fromObject(inner, depth+1)
			if errors.Is(err, errNoBlocks) {
				continue
			}
			return doc, err
		case '[':
			nodes, err := decodeNodes(inner)
			if err == nil && len(nodes) > 0 {
				return NewDocument(nodes), nil
			}
		}
	}
	return Document{}, errNoBlocks
}

func documentFromParts(blocks, vars json.RawMessage) (Document, error) {
	var doc Document

	inner := bytes.TrimSpace(blocks)
	switch {
	case len(inner) == 0 || isNull(inner):
	case inner[0] == '[':
		nodes, err := decodeNodes(inner)
		if err != nil {
			return Document{}, fmt.Errorf("blocks: %w", err)
		}
		doc.Blocks.Blocks = nodes
	case inner[0] == '{':
		if err := json.Unmarshal(inner, &doc.Blocks); err != nil {
			return Document{}, fmt.Errorf("blocks: %w", err)
		}
	default:
		return Document{}, fmt.Errorf("blocks: expected object or array")
	}

	if len(bytes.TrimSpace(vars)) > 0 && !isNull(vars) {
		if err := json.Unmarshal(vars, &doc.Variables); err != nil {
			return Document{}, fmt.Errorf("variables: %w", err)
		}
	}
	return doc, nil
}

func decodeNodes(data []byte) ([]*Node, error) {
	var nodes []*Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, err
	}
	out := nodes[:0]
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

func wrapperKeys(obj map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(obj))
	seen := make(map[string]bool)
	for _, k := range preferredWrapperKeys {
		if _, ok := obj[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range obj {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// Interchange is the canonical wrapper {"<container-key>": document}.
type Interchange map[string]Document

// Wrap places doc under the container key (DefaultContainerKey if empty).
func Wrap(doc Document, key string) Interchange {
	if key == "" {
		key = DefaultContainerKey
	}
	return Interchange{key: doc}
}

// Marshal encodes a document as indented JSON.
func Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
