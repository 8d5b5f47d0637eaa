package metadata

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"class-remapper/internal/classfile"
	"class-remapper/internal/container"
	"class-remapper/internal/diagnostic"
)

// ReadContainer parses every class entry of the container at path.
func ReadContainer(path string) ([]*ClassMetadata, error) {
	r, err := container.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []*ClassMetadata

	for _, e := range r.Classes() {
		data, err := e.Read()
		if err != nil {
			return nil, err
		}

		cf, err := classfile.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name, err)
		}

		out = append(out, FromClass(cf))
	}

	return out, nil
}

// LoadContainer reads the container at path into the store and returns the
// number of classes recorded.
func (s *Store) LoadContainer(path string) (int, error) {
	mds, err := ReadContainer(path)
	if err != nil {
		return 0, err
	}

	s.PutAll(mds)

	return len(mds), nil
}

// LoadOptions configures LoadLibraries.
type LoadOptions struct {
	// Jobs bounds concurrent library reads; values below 1 mean 1.
	Jobs int
	// Cache is optional.
	Cache  *Cache
	Logger *zap.Logger
}

// LoadLibraries reads library containers concurrently and records them in
// paths order, so a class present in several libraries ends up with the
// metadata of the last one. Unreadable libraries are skipped and reported
// as warnings; the only error is cancellation of ctx.
func (s *Store) LoadLibraries(ctx context.Context, paths []string, opts LoadOptions) (*diagnostic.Diagnostics, error) {
	diags := &diagnostic.Diagnostics{}
	if len(paths) == 0 {
		return diags, nil
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([][]*ClassMetadata, len(paths))
	failures := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(opts.Jobs, len(paths))))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			results[i], failures[i] = loadLibrary(path, opts.Cache, logger)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return diags, err
	}

	for i, path := range paths {
		if failures[i] != nil {
			logger.Warn("skipping library", zap.String("path", path), zap.Error(failures[i]))
			diags.AddWarning("library_load_failed", failures[i].Error(), path, path)

			continue
		}

		s.PutAll(results[i])
		logger.Debug("loaded library", zap.String("path", path), zap.Int("classes", len(results[i])))
	}

	return diags, nil
}

func loadLibrary(path string, cache *Cache, logger *zap.Logger) ([]*ClassMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat library: %w", err)
	}

	if cached, ok, err := cache.Get(path, info); err != nil {
		logger.Debug("ignoring cache entry", zap.String("path", path), zap.Error(err))
	} else if ok {
		return cached, nil
	}

	mds, err := ReadContainer(path)
	if err != nil {
		return nil, err
	}

	if err := cache.Put(path, info, mds); err != nil {
		logger.Debug("failed to write cache entry", zap.String("path", path), zap.Error(err))
	}

	return mds, nil
}

// FindLibraries lists the .jar and .zip files below dir in lexical order.
func FindLibraries(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("library directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("library directory %s is not a directory", dir)
	}

	var out []string

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".jar", ".zip":
			if !d.IsDir() {
				out = append(out, path)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Strings(out)

	return out, nil
}
