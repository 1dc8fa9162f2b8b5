// Package cache decides whether a pipeline run may be skipped. The decision
// is a pure mtime staleness check over the declared input files; content is
// never hashed and inputs are never read.
package cache

import (
	"fmt"
	"os"
	"time"
)

// Action is the gate's verdict.
type Action int

const (
	Skip Action = iota
	Regenerate
)

func (a Action) String() string {
	if a == Skip {
		return "skip"
	}
	return "regenerate"
}

// Decision is computed once per run, before any external call, and never
// mutated afterward. Reason is for verbose logging only.
type Decision struct {
	Action Action
	Reason string
}

// Decide compares the output file's modification time against the newest of
// the existing input files. A missing input does not force regeneration; only
// its mtime, when present, participates. force always regenerates.
func Decide(outputPath string, inputPaths []string, force bool) Decision {
	if force {
		return Decision{Action: Regenerate, Reason: "forced"}
	}

	out, err := os.Stat(outputPath)
	if err != nil {
		return Decision{Action: Regenerate, Reason: fmt.Sprintf("output %s does not exist", outputPath)}
	}

	var newest time.Time
	var newestPath string
	for _, p := range inputPaths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
			newestPath = p
		}
	}

	if newest.After(out.ModTime()) {
		return Decision{
			Action: Regenerate,
			Reason: fmt.Sprintf("input %s is newer than output", newestPath),
		}
	}
	return Decision{
		Action: Skip,
		Reason: fmt.Sprintf("output %s is up to date", outputPath),
	}
}
