package ingest

import (
	"bufio"
	"context"
	"os"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-pricing/internal/domain/discount"
)

const (
	defaultBatchSize = 500
	bloomFPR         = 0.001
	maxLineBytes     = 64 * 1024
)

// Store persists imported discount codes.
type Store interface {
	UpsertCodes(ctx context.Context, codes []discount.Code) error
}

// Stats summarises an import run.
type Stats struct {
	Files    int
	Records  int
	Imported int
	// Conflicts counts codes defined in more than one file. They are skipped.
	Conflicts int
}

// Importer loads discount codes from files into a Store.
type Importer struct {
	store     Store
	lg        *zap.Logger
	batchSize int
}

// NewImporter returns an Importer writing to store.
func NewImporter(store Store, lg *zap.Logger) *Importer {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Importer{store: store, lg: lg, batchSize: defaultBatchSize}
}

// fileCodes holds the codes decoded from one file, keyed by code. A code
// repeated within a file keeps its last definition.
type fileCodes struct {
	path    string
	records int
	codes   map[string]discount.Code
	order   []string
	filter  *bloom.BloomFilter
}

// Import decodes all files concurrently, drops codes that appear in more
// than one file and upserts the rest in batches.
func (i *Importer) Import(ctx context.Context, files []string) (Stats, error) {
	stats := Stats{Files: len(files)}

	decoded := make([]*fileCodes, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for idx, path := range files {
		g.Go(func() error {
			fc, err := readFile(gctx, path)
			if err != nil {
				return errors.Wrapf(err, "read %s", path)
			}
			i.lg.Info("File decoded",
				zap.String("file", path),
				zap.Int("records", fc.records),
				zap.Int("codes", len(fc.codes)),
			)
			decoded[idx] = fc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	conflicts := findConflicts(decoded)
	stats.Conflicts = len(conflicts)
	for code := range conflicts {
		i.lg.Warn("Code defined in several files, skipped", zap.String("code", code))
	}

	batch := make([]discount.Code, 0, i.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := i.store.UpsertCodes(ctx, batch); err != nil {
			return errors.Wrap(err, "upsert codes")
		}
		stats.Imported += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, fc := range decoded {
		stats.Records += fc.records
		for _, code := range fc.order {
			if _, ok := conflicts[code]; ok {
				continue
			}
			batch = append(batch, fc.codes[code])
			if len(batch) == i.batchSize {
				if err := flush(); err != nil {
					return stats, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}

	i.lg.Info("Import complete",
		zap.Int("files", stats.Files),
		zap.Int("records", stats.Records),
		zap.Int("imported", stats.Imported),
		zap.Int("conflicts", stats.Conflicts),
	)
	return stats, nil
}

// findConflicts returns the codes present in two or more files. Each file
// checks its codes against the other files' bloom filters and only the
// candidates are confirmed exactly.
func findConflicts(files []*fileCodes) map[string]struct{} {
	conflicts := make(map[string]struct{})
	for idx, fc := range files {
		for _, code := range fc.order {
			for j, other := range files {
				if j == idx || !other.filter.TestString(code) {
					continue
				}
				if _, ok := other.codes[code]; ok {
					conflicts[code] = struct{}{}
					break
				}
			}
		}
	}
	return conflicts
}

// readFile streams a gzip-compressed JSON-lines file.
func readFile(ctx context.Context, path string) (*fileCodes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	return decodeLines(ctx, path, bufio.NewScanner(gz))
}

func decodeLines(ctx context.Context, path string, scanner *bufio.Scanner) (*fileCodes, error) {
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)

	fc := &fileCodes{
		path:  path,
		codes: make(map[string]discount.Code),
	}
	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line++

		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		c, err := DecodeRecord(data)
		if err != nil {
			return nil, &LineError{File: path, Line: line, Err: err}
		}

		fc.records++
		if _, ok := fc.codes[c.Code]; !ok {
			fc.order = append(fc.order, c.Code)
		}
		fc.codes[c.Code] = c
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "scan %s", path)
	}

	fc.filter = bloom.NewWithEstimates(uint(max(len(fc.codes), 1)), bloomFPR)
	for _, code := range fc.order {
		fc.filter.AddString(code)
	}
	return fc, nil
}
