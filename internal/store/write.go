package store

import (
	"context"
	"database/sql"
	"fmt"
)

// WriteBuild records a build and its placeholders in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing the same build
// again returns the stored row with inserted=false.
func (s *Store) WriteBuild(ctx context.Context, b Build) (stored Build, inserted bool, err error) {
	if b.ID == "" {
		return Build{}, false, fmt.Errorf("write build: missing id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Build{}, false, fmt.Errorf("write build: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO builds
		(seq, id, document_hash, script_hash, script, rules, subroutines, markers, tool_version)
		SELECT COALESCE(MAX(seq), 0) + 1, ?, ?, ?, ?, ?, ?, ?, ? FROM builds WHERE true
		ON CONFLICT(id) DO NOTHING
	`,
		b.ID,
		b.DocumentHash,
		b.ScriptHash,
		b.Script,
		b.Rules,
		b.Subroutines,
		b.Markers,
		b.ToolVersion,
	)
	if err != nil {
		return Build{}, false, fmt.Errorf("write build: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return Build{}, false, fmt.Errorf("write build: rows affected: %w", err)
	}

	if rowsAffected > 0 {
		for _, p := range b.Placeholders {
			if err := writePlaceholder(ctx, tx, b.ID, p); err != nil {
				return Build{}, false, err
			}
		}
		inserted = true
	}

	if err := tx.Commit(); err != nil {
		return Build{}, false, fmt.Errorf("write build: commit: %w", err)
	}

	stored, err = s.ReadBuild(ctx, b.ID)
	if err != nil {
		return Build{}, false, fmt.Errorf("write build: %w", err)
	}
	return stored, inserted, nil
}

func writePlaceholder(ctx context.Context, tx *sql.Tx, buildID string, p Placeholder) error {
	fields, err := marshalNames(p.Fields)
	if err != nil {
		return fmt.Errorf("write placeholder %q: %w", p.Kind, err)
	}
	values, err := marshalNames(p.ValueInputs)
	if err != nil {
		return fmt.Errorf("write placeholder %q: %w", p.Kind, err)
	}
	statements, err := marshalNames(p.StatementInputs)
	if err != nil {
		return fmt.Errorf("write placeholder %q: %w", p.Kind, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO build_placeholders
		(build_id, kind, shape, fields, value_inputs, statement_inputs)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(build_id, kind) DO NOTHING
	`, buildID, p.Kind, p.Shape, fields, values, statements)
	if err != nil {
		return fmt.Errorf("write placeholder %q: %w", p.Kind, err)
	}
	return nil
}
