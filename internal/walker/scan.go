package walker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dirpatch/internal/hash"
	"dirpatch/internal/progress"
	"dirpatch/internal/record"
)

// ErrDuplicatePath is returned when two files of one root map to the same
// canonical path.
var ErrDuplicatePath = errors.New("duplicate canonical path")

var hashFile = hash.HashFile

type ScanOptions struct {
	Algorithm  hash.Algorithm
	Workers    int
	Exclusions []string
	Progress   *progress.Bar
	Logger     *zap.Logger
}

func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0) * 2
}

// Scan walks rootPath and digests every file with a bounded pool of
// workers. Records are funnelled through a single collector, so the result
// map is only ever written by one goroutine. The first failing file cancels
// the remaining work and fails the scan; no partial result is returned.
func Scan(ctx context.Context, rootPath string, opts ScanOptions) (record.ScanResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers()
	}
	alg := opts.Algorithm
	if alg == "" {
		alg = hash.DefaultAlgorithm
	}

	start := time.Now()
	walkResult, err := Walk(rootPath, opts.Exclusions)
	if err != nil {
		return nil, err
	}
	logger.Info("walked directory",
		zap.String("root", walkResult.Root),
		zap.Int("files", len(walkResult.Files)),
		zap.Duration("elapsed", walkResult.Duration))

	if opts.Progress != nil {
		opts.Progress.AddRoot(walkResult.Root, int64(len(walkResult.Files)))
	}

	records := make(chan record.FileRecord, numWorkers)
	collected := make(chan collectResult, 1)
	go func() {
		collected <- collect(records, len(walkResult.Files))
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)

	for _, file := range walkResult.Files {
		if gctx.Err() != nil {
			break
		}
		file := file
		g.Go(func() error {
			rec, err := scanFile(file, alg)
			if err != nil {
				return fmt.Errorf("%s: %w", file.Path, err)
			}
			logger.Debug("hashed file",
				zap.String("path", rec.Path),
				zap.String("digest", rec.Digest),
				zap.Int64("size", rec.Size))

			select {
			case records <- rec:
			case <-gctx.Done():
				return gctx.Err()
			}

			if opts.Progress != nil {
				opts.Progress.Increment()
			}
			return nil
		})
	}

	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	close(records)
	out := <-collected

	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", walkResult.Root, err)
	}
	if out.err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", walkResult.Root, out.err)
	}

	logger.Info("scanned directory",
		zap.String("root", walkResult.Root),
		zap.String("algorithm", alg.String()),
		zap.Int("files", len(out.result)),
		zap.Int64("bytes", out.result.TotalSize()),
		zap.Duration("elapsed", time.Since(start)))

	return out.result, nil
}

// ScanPair scans both roots in parallel and returns once both have finished.
func ScanPair(ctx context.Context, rootA, rootB string, opts ScanOptions) (record.ScanResult, record.ScanResult, error) {
	var scanA, scanB record.ScanResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		scanA, err = Scan(gctx, rootA, opts)
		return err
	})
	g.Go(func() error {
		var err error
		scanB, err = Scan(gctx, rootB, opts)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return scanA, scanB, nil
}

type collectResult struct {
	result record.ScanResult
	err    error
}

// collect drains records until the channel closes so that producers never
// block, keeping the first duplicate it sees.
func collect(records <-chan record.FileRecord, sizeHint int) collectResult {
	out := collectResult{result: make(record.ScanResult, sizeHint)}
	for rec := range records {
		if _, exists := out.result[rec.Path]; exists {
			if out.err == nil {
				out.err = fmt.Errorf("%w: %s", ErrDuplicatePath, rec.Path)
			}
			continue
		}
		out.result[rec.Path] = rec
	}
	return out
}

// scanFile digests the file first and stats it afterwards; the two reads are
// not atomic with respect to concurrent writers.
func scanFile(file FileInfo, alg hash.Algorithm) (record.FileRecord, error) {
	digest, err := hashFile(file.Path, alg)
	if err != nil {
		return record.FileRecord{}, err
	}

	info, err := os.Stat(file.Path)
	if err != nil {
		return record.FileRecord{}, fmt.Errorf("failed to stat file: %w", err)
	}

	return record.FileRecord{
		Path:       file.RelPath,
		Digest:     digest,
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
	}, nil
}
