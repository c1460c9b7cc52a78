// Package selections provides the enumerated values offered by dropdown
// kinds. Values come from a flat text table loaded once, asynchronously.
package selections

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Table maps list names to their values in file order.
type Table struct {
	lists map[string][]string
	order []string
}

// Parse reads the flat table format: one "ListName value" row per value,
// where the value is the rest of the line. Blank lines and lines starting
// with # are ignored.
func Parse(r io.Reader) (*Table, error) {
	t := &Table{lists: make(map[string][]string)}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		list, value, ok := strings.Cut(text, " ")
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			return nil, fmt.Errorf("selections line %d: expected \"ListName value\", got %q", line, text)
		}
		t.add(list, value)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read selections: %w", err)
	}
	return t, nil
}

// ParseFile parses the table stored at path.
func ParseFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open selections: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func (t *Table) add(list, value string) {
	if _, ok := t.lists[list]; !ok {
		t.order = append(t.order, list)
	}
	t.lists[list] = append(t.lists[list], value)
}

// Lists returns the list names in file order.
func (t *Table) Lists() []string {
	return slices.Clone(t.order)
}

// Values returns the values of one list.
func (t *Table) Values(list string) ([]string, bool) {
	vals, ok := t.lists[list]
	return slices.Clone(vals), ok
}

// Match returns the listed spelling of value, compared case-insensitively.
func Match(values []string, value string) (string, bool) {
	if slices.Contains(values, value) {
		return value, true
	}
	fold := cases.Fold()
	want := fold.String(value)
	for _, v := range values {
		if fold.String(v) == want {
			return v, true
		}
	}
	return "", false
}
