package sheet

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SQLStore keeps one DB row per sheet row; Put rewrites a sheet's rows in
// one transaction so a reader never observes a half-written grid.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, name string) ([][]string, error) {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sheets WHERE name=$1`, name).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT cells_json FROM sheet_rows WHERE sheet_name=$1 ORDER BY row_idx`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grid [][]string
	for rows.Next() {
		var cj string
		if err := rows.Scan(&cj); err != nil {
			return nil, err
		}
		var cells []string
		if err := json.Unmarshal([]byte(cj), &cells); err != nil {
			return nil, err
		}
		grid = append(grid, cells)
	}
	return grid, rows.Err()
}

func (s *SQLStore) Put(ctx context.Context, name string, grid [][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sheets (name, created_at) VALUES ($1,$2) ON CONFLICT (name) DO NOTHING`,
		name, time.Now().Unix()); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_rows WHERE sheet_name=$1`, name); err != nil {
		return err
	}
	for i, row := range grid {
		cj, err := json.Marshal(row)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_rows (sheet_name, row_idx, cells_json) VALUES ($1,$2,$3)`,
			name, i, string(cj)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) Create(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sheets (name, created_at) VALUES ($1,$2) ON CONFLICT (name) DO NOTHING`,
		name, time.Now().Unix())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrExists
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, name string) error {
	// Deleting an absent sheet is not an error; cascade drops its rows.
	_, err := s.db.ExecContext(ctx, `DELETE FROM sheets WHERE name=$1`, name)
	return err
}
