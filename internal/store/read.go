package store

import (
	"context"
	"database/sql"
	"fmt"
)

const buildColumns = `seq, id, document_hash, script_hash, script, rules, subroutines, markers, tool_version`

// ReadBuild retrieves a single build with its placeholders.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadBuild(ctx context.Context, id string) (Build, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+buildColumns+` FROM builds WHERE id = ?`, id)
	b, err := scanBuild(row)
	if err != nil {
		return Build{}, err
	}
	b.Placeholders, err = s.readPlaceholders(ctx, b.ID)
	if err != nil {
		return Build{}, err
	}
	return b, nil
}

// ListBuilds returns every build with its placeholders, ordered by seq.
// Returns an empty slice (not nil) if the log is empty.
func (s *Store) ListBuilds(ctx context.Context) ([]Build, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+buildColumns+`
		FROM builds
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	builds := []Build{}
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	// The single connection is busy until rows is closed.
	rows.Close()

	for i := range builds {
		builds[i].Placeholders, err = s.readPlaceholders(ctx, builds[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return builds, nil
}

// LatestForDocument returns the most recent build of a document.
// Returns sql.ErrNoRows if the document was never built.
func (s *Store) LatestForDocument(ctx context.Context, documentHash string) (Build, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM builds
		WHERE document_hash = ?
		ORDER BY seq DESC
		LIMIT 1
	`, documentHash).Scan(&id)
	if err != nil {
		return Build{}, err
	}
	return s.ReadBuild(ctx, id)
}

func (s *Store) readPlaceholders(ctx context.Context, buildID string) ([]Placeholder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, shape, fields, value_inputs, statement_inputs
		FROM build_placeholders
		WHERE build_id = ?
		ORDER BY kind COLLATE BINARY ASC
	`, buildID)
	if err != nil {
		return nil, fmt.Errorf("query placeholders: %w", err)
	}
	defer rows.Close()

	var out []Placeholder
	for rows.Next() {
		var (
			p                          Placeholder
			fields, values, statements string
		)
		if err := rows.Scan(&p.Kind, &p.Shape, &fields, &values, &statements); err != nil {
			return nil, fmt.Errorf("scan placeholder: %w", err)
		}
		if p.Fields, err = unmarshalNames(fields); err != nil {
			return nil, err
		}
		if p.ValueInputs, err = unmarshalNames(values); err != nil {
			return nil, err
		}
		if p.StatementInputs, err = unmarshalNames(statements); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate placeholders: %w", err)
	}
	return out, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(row scanner) (Build, error) {
	var b Build
	err := row.Scan(
		&b.Seq,
		&b.ID,
		&b.DocumentHash,
		&b.ScriptHash,
		&b.Script,
		&b.Rules,
		&b.Subroutines,
		&b.Markers,
		&b.ToolVersion,
	)
	if err == sql.ErrNoRows {
		return Build{}, err
	}
	if err != nil {
		return Build{}, fmt.Errorf("scan build: %w", err)
	}
	return b, nil
}
