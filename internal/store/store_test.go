package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []string{"builds", "build_placeholders"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %q not found after idempotent opens", table)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	assert.NoError(t, s.Close())
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	for _, p := range pragmas {
		t.Run(p.name, func(t *testing.T) {
			got, err := s.pragmaValue(p.name)
			require.NoError(t, err)
			assert.Equal(t, p.reported, got)
		})
	}

	version, err := s.pragmaValue("user_version")
	require.NoError(t, err)
	assert.Equal(t, "1", version)
	assert.Equal(t, 1, schemaVersion)
}

func TestMigration_CreatesDocumentIndex(t *testing.T) {
	s := createTestStore(t)

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_builds_document'",
	).Scan(&name)
	assert.NoError(t, err)
}

func TestNewBuild_ContentAddressed(t *testing.T) {
	a := createTestBuild(t, "r", "script")
	b := createTestBuild(t, "r", "script")
	c := createTestBuild(t, "r", "other script")
	d := createTestBuild(t, "s", "script")

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
	assert.NotEqual(t, a.ID, d.ID)
	assert.Equal(t, a.DocumentHash, c.DocumentHash)
	assert.Equal(t, ir.ScriptHash("script"), a.ScriptHash)
	assert.Equal(t, ir.ToolVersion, a.ToolVersion)
	assert.Len(t, a.ID, 64)
}

func TestWriteBuild_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	b := createTestBuild(t, "r", "export async function r() {}\n")
	b.Markers = 2
	b.Placeholders = []Placeholder{
		{Kind: "Zap", Shape: "statement", ValueInputs: []string{"POWER"}},
		{Kind: "Glow", Shape: "value", Fields: []string{"COLOR"}},
	}

	stored, inserted, err := s.WriteBuild(ctx, b)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, int64(1), stored.Seq)

	got, err := s.ReadBuild(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Script, got.Script)
	assert.Equal(t, 1, got.Rules)
	assert.Equal(t, 2, got.Markers)
	assert.Equal(t, []Placeholder{
		{Kind: "Glow", Shape: "value", Fields: []string{"COLOR"}},
		{Kind: "Zap", Shape: "statement", ValueInputs: []string{"POWER"}},
	}, got.Placeholders)
}

func TestWriteBuild_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	b := createTestBuild(t, "r", "script")

	first, inserted, err := s.WriteBuild(ctx, b)
	require.NoError(t, err)
	require.True(t, inserted)

	second, inserted, err := s.WriteBuild(ctx, b)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first, second)

	builds, err := s.ListBuilds(ctx)
	require.NoError(t, err)
	assert.Len(t, builds, 1)
}

func TestWriteBuild_MissingID(t *testing.T) {
	s := createTestStore(t)
	_, _, err := s.WriteBuild(context.Background(), Build{Script: "x"})
	assert.Error(t, err)
}

func TestListBuilds_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.ListBuilds(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, script := range []string{"c", "a", "b"} {
		_, _, err := s.WriteBuild(ctx, createTestBuild(t, "r", script))
		require.NoError(t, err)
	}

	builds, err := s.ListBuilds(ctx)
	require.NoError(t, err)
	require.Len(t, builds, 3)
	for i, want := range []string{"c", "a", "b"} {
		assert.Equal(t, int64(i+1), builds[i].Seq)
		assert.Equal(t, want, builds[i].Script)
	}
}

func TestLatestForDocument(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	old := createTestBuild(t, "r", "v1")
	other := createTestBuild(t, "other", "v1")
	latest := createTestBuild(t, "r", "v2")
	for _, b := range []Build{old, other, latest} {
		_, _, err := s.WriteBuild(ctx, b)
		require.NoError(t, err)
	}

	got, err := s.LatestForDocument(ctx, old.DocumentHash)
	require.NoError(t, err)
	assert.Equal(t, latest.ID, got.ID)
	assert.Equal(t, int64(3), got.Seq)

	_, err = s.LatestForDocument(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestReadBuild_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadBuild(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPlaceholdersFrom(t *testing.T) {
	defs := []registry.Definition{
		{Kind: "Wait", Shape: registry.ShapeStatement},
		{Kind: "Zap", Shape: registry.ShapeStatement, Placeholder: true, ValueInputs: []string{"POWER"}},
	}
	assert.Equal(t, []Placeholder{
		{Kind: "Zap", Shape: "statement", ValueInputs: []string{"POWER"}},
	}, PlaceholdersFrom(defs))
}
