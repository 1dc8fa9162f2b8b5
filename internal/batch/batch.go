// Package batch is the looping driver over a directory of notes files. It is
// deliberately outside the core pipeline: each file gets its own invocation
// with a disjoint notes/output pair, and one file's failure never stops the
// walk.
package batch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cylon-model-15/shifty/internal/backend"
	"github.com/cylon-model-15/shifty/internal/config"
	"github.com/cylon-model-15/shifty/internal/pipeline"
)

// Summary counts the outcome of one batch walk.
type Summary struct {
	Processed int
	Failed    int
	FailedAt  []string
}

// Driver walks a directory and runs the pipeline for every notes file.
type Driver struct {
	cfg config.Config // template; NotesFile/OutputFile are set per file
	new func(config.Config) *pipeline.Runner
	log *zap.Logger
	out io.Writer
}

func NewDriver(cfg config.Config, completer backend.Completer, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{
		cfg: cfg,
		new: func(c config.Config) *pipeline.Runner {
			return pipeline.New(c, completer, log)
		},
		log: log,
		out: os.Stdout,
	}
}

// SetOutput redirects user-facing progress lines.
func (d *Driver) SetOutput(w io.Writer) { d.out = w }

// Run walks root for .md notes files (skipping README.md, dotted directories,
// and anything non-regular) and runs the pipeline per file with the output
// beside the input. Per-file failures are reported and counted; the walk
// itself only fails on filesystem errors.
func (d *Driver) Run(ctx context.Context, root string) (Summary, error) {
	var sum Summary

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !eligible(entry.Name()) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fmt.Fprintf(d.out, "📂 Processing: %s\n", path)

		cfg := d.cfg
		cfg.NotesFile = path
		cfg.OutputFile = config.DeriveOutputPath(path)

		runner := d.new(cfg)
		runner.SetOutput(d.out)
		if runErr := runner.Run(ctx); runErr != nil {
			d.log.Warn("batch: file failed", zap.String("path", path), zap.Error(runErr))
			fmt.Fprintf(d.out, "❌ %s: %v\n", path, runErr)
			sum.Failed++
			sum.FailedAt = append(sum.FailedAt, path)
			return nil
		}
		sum.Processed++
		return nil
	})
	if err != nil {
		return sum, err
	}

	fmt.Fprintf(d.out, "Batch complete: %d processed, %d failed.\n", sum.Processed, sum.Failed)
	return sum, nil
}

func eligible(name string) bool {
	if !strings.HasSuffix(name, ".md") {
		return false
	}
	return !strings.EqualFold(name, "README.md")
}
