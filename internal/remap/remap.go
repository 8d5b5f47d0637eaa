package remap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"class-remapper/internal/classfile"
	"class-remapper/internal/common"
	"class-remapper/internal/container"
	"class-remapper/internal/diagnostic"
	"class-remapper/internal/mapping"
	"class-remapper/internal/metadata"
	"class-remapper/internal/resolve"
	"class-remapper/internal/table"
)

var (
	// ErrPrimaryRead is wrapped by failures to read the input container.
	ErrPrimaryRead = errors.New("failed to read input container")
	// ErrOutputWrite is wrapped by failures to write the output container.
	ErrOutputWrite = errors.New("failed to write output container")
)

// Options configures Run.
type Options struct {
	Input  string
	Output string
	// Mappings are applied in order; later documents override earlier ones.
	Mappings []string
	// Libraries are containers consulted for inheritance only.
	Libraries []string
	// Reverse swaps the direction of every rule.
	Reverse     bool
	KeepSource  bool
	Jobs        int
	OnCollision table.CollisionPolicy
	// Cache is optional and only used for libraries.
	Cache  *metadata.Cache
	Logger *zap.Logger
}

// Report summarizes a run.
type Report struct {
	// Classes is the number of classes rewritten.
	Classes int
	// Resources is the number of entries copied unchanged.
	Resources int
	// Renamed counts classes written under a different name.
	Renamed int
	// Libraries is the number of library containers loaded.
	Libraries int
	Rules     table.Stats
	// Diagnostics holds non-fatal findings: mapping notes, skipped
	// libraries and duplicate output entries.
	Diagnostics *diagnostic.Diagnostics
}

// Run builds the tables and metadata described by opts and rewrites
// opts.Input into opts.Output.
func Run(ctx context.Context, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	docs, err := mapping.LoadFiles(opts.Mappings...)
	if err != nil {
		return nil, err
	}

	b := table.NewBuilder(table.Options{OnCollision: opts.OnCollision})
	b.Add(docs...)

	tables, diags, err := b.Build()
	if err != nil {
		return &Report{Diagnostics: diags}, fmt.Errorf("failed to build rule tables: %w", err)
	}

	if opts.Reverse {
		tables = tables.Invert()
	}

	logger.Info("rule tables built",
		zap.Int("classes", tables.Classes.Len()),
		zap.Int("fields", tables.Fields.Len()),
		zap.Int("methods", tables.Methods.Len()),
		zap.Bool("reverse", opts.Reverse))

	store := metadata.NewStore()

	libDiags, err := store.LoadLibraries(ctx, opts.Libraries, metadata.LoadOptions{
		Jobs:   opts.Jobs,
		Cache:  opts.Cache,
		Logger: logger,
	})
	if err != nil {
		return &Report{Diagnostics: diags}, err
	}

	diags.Merge(*libDiags)

	p := New(tables, store, Config{KeepSource: opts.KeepSource, Jobs: opts.Jobs, Logger: logger})

	report, err := p.Rewrite(ctx, opts.Input, opts.Output)
	if report != nil {
		report.Libraries = len(opts.Libraries) - len(libDiags.Warnings)
		diags.Merge(*report.Diagnostics)
		report.Diagnostics = diags
	}

	return report, err
}

// Config configures a Pipeline.
type Config struct {
	KeepSource bool
	// Jobs bounds concurrent class rewrites; values below 1 mean 1.
	Jobs   int
	Logger *zap.Logger
}

// Pipeline rewrites containers against fixed tables. The store is filled
// with each input's own classes as it is processed.
type Pipeline struct {
	tables *table.Tables
	store  *metadata.Store
	cfg    Config
	logger *zap.Logger
}

// New creates a pipeline. store may be nil.
func New(tables *table.Tables, store *metadata.Store, cfg Config) *Pipeline {
	if store == nil {
		store = metadata.NewStore()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{tables: tables, store: store, cfg: cfg, logger: logger}
}

// pending is a class parsed in the first pass.
type pending struct {
	entry container.Entry
	class *classfile.ClassFile
	name  string
}

// Rewrite runs both passes over input and writes output.
func (p *Pipeline) Rewrite(ctx context.Context, input, output string) (*Report, error) {
	report := &Report{Rules: p.tables.Stats(), Diagnostics: &diagnostic.Diagnostics{}}

	in, err := container.Open(input)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrPrimaryRead, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(output), "."+filepath.Base(output)+".*.tmp")
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}

	committed := false

	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	out := container.NewWriter(tmp)

	classes, err := p.firstPass(in, out, report)
	if err != nil {
		return report, err
	}

	if err := p.secondPass(ctx, classes, out, report); err != nil {
		return report, err
	}

	if err := out.Close(); err != nil {
		return report, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}

	if err := tmp.Close(); err != nil {
		return report, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}

	if err := os.Rename(tmp.Name(), output); err != nil {
		return report, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}

	committed = true

	p.logger.Info("container rewritten",
		zap.String("input", input),
		zap.String("output", output),
		zap.Int("classes", report.Classes),
		zap.Int("renamed", report.Renamed),
		zap.Int("resources", report.Resources))

	return report, nil
}

func (p *Pipeline) firstPass(in *container.Reader, out *container.Writer, report *Report) ([]pending, error) {
	var classes []pending

	for _, e := range in.Entries {
		switch e.Kind {
		case container.KindDirectory:
			continue
		case container.KindResource:
			if err := p.copyResource(e, out, report); err != nil {
				return nil, err
			}
		case container.KindClass:
			data, err := e.Read()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrPrimaryRead, err)
			}

			cf, err := classfile.Parse(data)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrPrimaryRead, e.Name, err)
			}

			p.store.Put(metadata.FromClass(cf))
			classes = append(classes, pending{entry: e, class: cf, name: cf.Name()})
		}
	}

	p.logger.Debug("first pass done", zap.Int("classes", len(classes)), zap.Int("resources", report.Resources))

	return classes, nil
}

func (p *Pipeline) copyResource(e container.Entry, out *container.Writer, report *Report) error {
	if out.Has(e.Name) {
		p.duplicate(e.Name, report)
		return nil
	}

	if err := out.CopyRaw(e); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}

	report.Resources++

	return nil
}

func (p *Pipeline) duplicate(name string, report *Report) {
	p.logger.Warn("skipping duplicate entry", zap.String("entry", name))
	report.Diagnostics.AddWarning("duplicate_entry",
		fmt.Sprintf("entry %s was already written; later copy skipped", name), name, "")
}

func (p *Pipeline) secondPass(ctx context.Context, classes []pending, out *container.Writer, report *Report) error {
	rc, err := resolve.NewContext(p.tables, p.store, resolve.Options{})
	if err != nil {
		return err
	}

	results := make([][]byte, len(classes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.cfg.Jobs))

	for i := range classes {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			c := &classes[i]
			if err := c.class.Remap(rc, classfile.Options{KeepSource: p.cfg.KeepSource}); err != nil {
				return fmt.Errorf("failed to rewrite %s: %w", c.entry.Name, err)
			}

			data, err := c.class.Bytes()
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", c.entry.Name, err)
			}

			results[i] = data

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for i, c := range classes {
		newName := rc.MapClass(c.name)
		entry := newName + common.ClassSuffix

		if out.Has(entry) {
			p.duplicate(entry, report)
			continue
		}

		if err := out.WriteFile(entry, results[i]); err != nil {
			return fmt.Errorf("%w: %w", ErrOutputWrite, err)
		}

		report.Classes++

		if newName != c.name {
			report.Renamed++
			p.logger.Debug("renamed class", zap.String("from", c.name), zap.String("to", newName))
		}
	}

	return nil
}
