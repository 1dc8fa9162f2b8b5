// Package pipeline sequences one full run: cache gate, lint, prompt
// assembly, the two backend passes, and the atomic write of the narrative.
// Every stage short-circuits on failure; the backend is never invoked on
// invalid input, and a failed run never leaves a partial output file.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cylon-model-15/shifty/internal/apperr"
	"github.com/cylon-model-15/shifty/internal/backend"
	"github.com/cylon-model-15/shifty/internal/cache"
	"github.com/cylon-model-15/shifty/internal/config"
	"github.com/cylon-model-15/shifty/internal/notes"
	"github.com/cylon-model-15/shifty/internal/prompt"
)

// Runner executes the two-pass pipeline for a single notes file.
type Runner struct {
	cfg     config.Config
	backend backend.Completer
	log     *zap.Logger
	out     io.Writer
}

func New(cfg config.Config, completer backend.Completer, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		backend: completer,
		log:     log,
		out:     os.Stdout,
	}
}

// SetOutput redirects user-facing progress lines, used by batch runs and tests.
func (r *Runner) SetOutput(w io.Writer) { r.out = w }

// loaded holds everything the two passes need, read in one stage so every
// configuration error surfaces before the first backend call.
type loaded struct {
	rawNotes  string
	pass1     *prompt.Template
	pass2     *prompt.Template
	style     string
	shorthand map[string]string
}

func (r *Runner) Run(ctx context.Context) error {
	dec := cache.Decide(r.cfg.OutputFile, r.cfg.InputPaths(), r.cfg.Force)
	r.log.Debug("cache decision",
		zap.String("action", dec.Action.String()),
		zap.String("reason", dec.Reason))
	if dec.Action == cache.Skip {
		fmt.Fprintf(r.out, "✅ %s is up to date, skipping.\n", r.cfg.OutputFile)
		return nil
	}

	raw, err := r.lintStage()
	if err != nil {
		return err
	}

	in, err := r.loadStage(raw)
	if err != nil {
		return err
	}

	facts, err := r.extractStage(ctx, in)
	if err != nil {
		return err
	}

	narrative, err := r.narrateStage(ctx, in, facts)
	if err != nil {
		return err
	}

	if err := r.writeStage(narrative); err != nil {
		return err
	}

	fmt.Fprintf(r.out, "🎉 Narrative saved to %s\n", r.cfg.OutputFile)
	return nil
}

// lintStage reads the notes file and lints it, reporting every violation at
// once. Lint failure aborts the run before any external call.
func (r *Runner) lintStage() (string, error) {
	data, err := os.ReadFile(r.cfg.NotesFile)
	if err != nil {
		return "", &apperr.FSError{Op: "read", Path: r.cfg.NotesFile, Err: err}
	}

	doc, report := notes.Parse(string(data))

	for _, w := range report.Warnings {
		fmt.Fprintf(r.out, "⚠️  %s:%d: %s\n", r.cfg.NotesFile, w.Line, w.Message)
	}
	if !report.OK {
		for _, v := range report.Violations {
			fmt.Fprintf(r.out, "❌ %s:%d: %s\n", r.cfg.NotesFile, v.Line, v.Message)
		}
		fmt.Fprintf(r.out, "Lint failed with %d violation(s); fix the notes before processing.\n",
			len(report.Violations))
		return "", apperr.ErrLintFailed
	}

	r.log.Debug("lint passed",
		zap.String("participant", doc.Participant),
		zap.Int("entries", len(doc.Entries)))
	fmt.Fprintf(r.out, "📋 Lint passed: %s, %d entries.\n", doc.Participant, len(doc.Entries))
	return string(data), nil
}

// loadStage loads the prompt templates (required) and the style guide and
// shorthand mapping (optional, absent means empty injection).
func (r *Runner) loadStage(raw string) (*loaded, error) {
	pass1, err := prompt.Load(r.cfg.Pass1File, prompt.PlaceholderRawNotes)
	if err != nil {
		return nil, err
	}
	pass2, err := prompt.Load(r.cfg.Pass2File,
		prompt.PlaceholderObservedFacts,
		prompt.PlaceholderStyleGuide,
		prompt.PlaceholderShorthand)
	if err != nil {
		return nil, err
	}

	style, err := prompt.LoadOptionalText(r.cfg.StyleGuideFile)
	if err != nil {
		return nil, err
	}
	shorthand, err := prompt.LoadShorthand(r.cfg.ShorthandFile)
	if err != nil {
		return nil, err
	}

	return &loaded{
		rawNotes:  raw,
		pass1:     pass1,
		pass2:     pass2,
		style:     style,
		shorthand: shorthand,
	}, nil
}

// extractStage is pass 1: raw notes in, observed facts out.
func (r *Runner) extractStage(ctx context.Context, in *loaded) (string, error) {
	fmt.Fprintln(r.out, "🚀 Pass 1: extracting facts...")
	p := in.pass1.Render(map[string]string{
		prompt.PlaceholderRawNotes: in.rawNotes,
	})

	facts, err := r.backend.Complete(ctx, r.cfg.Model, p)
	if err != nil {
		return "", err
	}
	r.log.Debug("pass 1 complete", zap.Int("facts_len", len(facts)))
	return facts, nil
}

// narrateStage is pass 2: facts, style guide, and shorthand in, prose out.
func (r *Runner) narrateStage(ctx context.Context, in *loaded, facts string) (string, error) {
	fmt.Fprintln(r.out, "✍️  Pass 2: generating narrative...")
	p := in.pass2.Render(map[string]string{
		prompt.PlaceholderObservedFacts: facts,
		prompt.PlaceholderStyleGuide:    in.style,
		prompt.PlaceholderShorthand:     prompt.RenderShorthand(in.shorthand),
	})

	narrative, err := r.backend.Complete(ctx, r.cfg.Model, p)
	if err != nil {
		return "", err
	}
	r.log.Debug("pass 2 complete", zap.Int("narrative_len", len(narrative)))
	return narrative, nil
}

// writeStage writes the narrative atomically: temp file in the target
// directory, fsync, rename. The previous output survives any failure.
func (r *Runner) writeStage(narrative string) error {
	dir := filepath.Dir(r.cfg.OutputFile)

	tmp, err := os.CreateTemp(dir, ".shifty-tmp-*")
	if err != nil {
		return &apperr.FSError{Op: "create temp in", Path: dir, Err: err}
	}
	tmpName := tmp.Name()

	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &apperr.FSError{Op: "write", Path: r.cfg.OutputFile, Err: err}
	}

	if _, err := tmp.WriteString(narrative); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &apperr.FSError{Op: "close", Path: tmpName, Err: err}
	}
	if err := os.Rename(tmpName, r.cfg.OutputFile); err != nil {
		_ = os.Remove(tmpName)
		return &apperr.FSError{Op: "rename", Path: r.cfg.OutputFile, Err: err}
	}
	return nil
}
