package sheet

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("sheet not found")
	ErrExists   = errors.New("sheet already exists")
)

// RemoteStore is the bulk get/put contract over named 2-D cell grids.
// Put replaces the whole grid in a single call; there are no per-cell
// writes at this boundary.
type RemoteStore interface {
	Get(ctx context.Context, name string) ([][]string, error)
	Put(ctx context.Context, name string, grid [][]string) error
	Create(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
}
