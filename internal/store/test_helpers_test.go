package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/blockc/internal/ir"
	tu "github.com/roach88/blockc/internal/testutil"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestBuild builds a record for a one-rule document.
func createTestBuild(t *testing.T, ruleName, script string) Build {
	t.Helper()
	doc := tu.Doc([]*ir.Node{tu.Mod(tu.Rule(ruleName, nil))})
	b, err := NewBuild(doc, script)
	if err != nil {
		t.Fatalf("NewBuild() failed: %v", err)
	}
	b.Rules = 1
	return b
}
