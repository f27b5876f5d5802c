package sheet

import (
	"context"
	"fmt"
	"time"

	"github.com/phods-dev/qotd-service/internal/metrics"
)

// Sheet is the in-memory mirror of one named grid. Mutations only flip the
// dirty flag; nothing reaches the remote store until Workbook.Commit.
type Sheet struct {
	name  string
	grid  [][]string
	dirty bool
}

func (s *Sheet) Name() string { return s.name }

func (s *Sheet) Rows() int { return len(s.grid) }

// Cell returns "" for coordinates outside the grid; cleaned rows have
// trailing empties trimmed, so short rows are normal.
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.grid) {
		return ""
	}
	if col < 0 || col >= len(s.grid[row]) {
		return ""
	}
	return s.grid[row][col]
}

func (s *Sheet) SetCell(row, col int, value string) {
	for len(s.grid) <= row {
		s.grid = append(s.grid, []string{})
	}
	for len(s.grid[row]) <= col {
		s.grid[row] = append(s.grid[row], "")
	}
	s.grid[row][col] = value
	s.dirty = true
}

func (s *Sheet) AppendRow(row []string) {
	s.grid = append(s.grid, row)
	s.dirty = true
}

// Grid exposes the backing grid for reads. Callers must not mutate it;
// writes go through SetCell/AppendRow/ReplaceAll so the dirty flag stays
// accurate.
func (s *Sheet) Grid() [][]string { return s.grid }

func (s *Sheet) ReplaceAll(grid [][]string) {
	s.grid = clean(grid)
	s.dirty = true
}

func (s *Sheet) Dirty() bool { return s.dirty }

func clean(grid [][]string) [][]string {
	for i, row := range grid {
		for len(row) > 0 && row[len(row)-1] == "" {
			row = row[:len(row)-1]
		}
		grid[i] = row
	}
	for len(grid) > 0 && len(grid[len(grid)-1]) == 0 {
		grid = grid[:len(grid)-1]
	}
	return grid
}

// Workbook caches sheets fetched from a RemoteStore. A sheet is fetched
// once at open; external edits to the remote store stay invisible until
// the workbook is rebuilt.
type Workbook struct {
	store  RemoteStore
	sheets map[string]*Sheet
}

func NewWorkbook(store RemoteStore) *Workbook {
	return &Workbook{store: store, sheets: map[string]*Sheet{}}
}

// Sheet returns the cached mirror, fetching the grid on first open. A
// fetch failure is fatal for the calling operation.
func (w *Workbook) Sheet(ctx context.Context, name string) (*Sheet, error) {
	if s, ok := w.sheets[name]; ok {
		return s, nil
	}
	grid, err := w.store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open sheet %q: %w", name, err)
	}
	s := &Sheet{name: name, grid: clean(grid)}
	w.sheets[name] = s
	return s, nil
}

func (w *Workbook) Create(ctx context.Context, name string) error {
	if err := w.store.Create(ctx, name); err != nil {
		return err
	}
	w.sheets[name] = &Sheet{name: name}
	return nil
}

func (w *Workbook) Delete(ctx context.Context, name string) error {
	delete(w.sheets, name)
	return w.store.Delete(ctx, name)
}

// Commit performs exactly one bulk write of the whole grid when the sheet
// is dirty. On failure the dirty flag stays set so the caller may retry.
func (w *Workbook) Commit(ctx context.Context, name string) error {
	s, ok := w.sheets[name]
	if !ok || !s.dirty {
		return nil
	}
	start := time.Now()
	if err := w.store.Put(ctx, name, s.grid); err != nil {
		return fmt.Errorf("commit sheet %q: %w", name, err)
	}
	metrics.Default().CommitDuration.Observe(time.Since(start).Seconds())
	s.dirty = false
	return nil
}
