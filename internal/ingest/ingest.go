package ingest

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/0JaeminKim0/pipe-prpo/internal/model"
)

// FileReport describes what one ingested file contributed.
type FileReport struct {
	Filename string    `json:"filename"`
	Shape    FileShape `json:"type"`
	Source   string    `json:"source,omitempty"`
	Rows     int       `json:"rows"`
	Skipped  bool      `json:"skipped,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Dataset is the combined outcome of an ingestion pass. PR rows from multiple
// files concatenate; the last PO-history file wins wholesale.
type Dataset struct {
	PR []*model.PRRecord
	PO []*model.PORecord
}

// NamedTable pairs an already-parsed table with its originating filename,
// for upload handlers that parse request bodies themselves.
type NamedTable struct {
	Filename string
	Table    *Table
}

// LoadFiles parses the given workbook paths concurrently and assembles a
// Dataset. Unknown or unparseable files are skipped with a diagnostic, never
// failing the batch.
func LoadFiles(ctx context.Context, paths []string) (*Dataset, []FileReport, error) {
	tables := make([]NamedTable, len(paths))

	g, _ := errgroup.WithContext(ctx)
	var mu sync.Mutex
	errs := make(map[int]error)

	for i, path := range paths {
		g.Go(func() error {
			t, err := ReadTable(path)
			if err != nil {
				mu.Lock()
				errs[i] = err
				mu.Unlock()
				return nil
			}
			tables[i] = NamedTable{Filename: filepath.Base(path), Table: t}
			return nil
		})
	}
	_ = g.Wait()

	for i, path := range paths {
		if err := errs[i]; err != nil {
			tables[i] = NamedTable{Filename: filepath.Base(path)}
			zap.L().Warn("ingest: file unreadable, skipping",
				zap.String("file", path),
				zap.Error(err),
			)
		}
	}

	ds, reports := Assemble(tables, errs)
	return ds, reports, nil
}

// Assemble classifies parsed tables and maps their rows into records.
// Ordering follows the input slice so repeated runs are deterministic.
func Assemble(tables []NamedTable, readErrs map[int]error) (*Dataset, []FileReport) {
	ds := &Dataset{}
	reports := make([]FileReport, 0, len(tables))

	for i, nt := range tables {
		if readErrs != nil {
			if err := readErrs[i]; err != nil {
				reports = append(reports, FileReport{
					Filename: nt.Filename,
					Shape:    ShapeUnknown,
					Skipped:  true,
					Error:    err.Error(),
				})
				continue
			}
		}

		shape, source := Detect(nt.Filename, nt.Table.Header)
		switch shape {
		case ShapePOHistory:
			pos := make([]*model.PORecord, 0, len(nt.Table.Rows))
			for _, row := range nt.Table.Rows {
				pos = append(pos, ToPORecord(row))
			}
			ds.PO = pos
			reports = append(reports, FileReport{Filename: nt.Filename, Shape: shape, Rows: len(pos)})
			zap.L().Info("ingest: loaded PO history",
				zap.String("file", nt.Filename),
				zap.Int("rows", len(pos)),
			)

		case ShapePRData:
			for _, row := range nt.Table.Rows {
				ds.PR = append(ds.PR, ToPRRecord(row, source))
			}
			reports = append(reports, FileReport{Filename: nt.Filename, Shape: shape, Source: source, Rows: len(nt.Table.Rows)})
			zap.L().Info("ingest: loaded PR data",
				zap.String("file", nt.Filename),
				zap.String("source", source),
				zap.Int("rows", len(nt.Table.Rows)),
			)

		default:
			reports = append(reports, FileReport{Filename: nt.Filename, Shape: ShapeUnknown, Skipped: true})
			zap.L().Warn("ingest: unknown file shape, skipping",
				zap.String("file", nt.Filename),
			)
		}
	}

	return ds, reports
}

// ListSampleFiles returns the workbook files under dir, sorted by name.
func ListSampleFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.xls*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
