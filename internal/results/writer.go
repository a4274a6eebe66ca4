package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/movabench/ukreval/internal/runner"
)

const timestampLayout = "2006-01-02T15-04-05"

// ModelDir sanitizes a model name into a directory name: slashes in
// names like "openai/gpt-oss-20b" become "__".
func ModelDir(model string) string {
	model = strings.TrimSpace(model)
	model = strings.ReplaceAll(model, "/", "__")
	return model
}

// Write stores a run result and, when samples are present, one
// samples_<task>_<timestamp>.jsonl per task next to it. Returns the
// path of the written results file.
func Write(outputPath string, run *RunResult, samples map[string][]runner.SampleLog) (string, error) {
	if run == nil {
		return "", errors.New("results: nil run")
	}
	if strings.TrimSpace(run.Model) == "" {
		return "", errors.New("results: empty model name")
	}
	outputPath = strings.TrimSpace(outputPath)
	if outputPath == "" {
		return "", errors.New("results: empty output path")
	}

	dir := filepath.Join(outputPath, ModelDir(run.Model))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("results: create output dir: %w", err)
	}

	ts := run.FinishedAt.UTC().Format(timestampLayout)

	b, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("results: marshal run: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("results_%s.json", ts))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("results: write %q: %w", path, err)
	}

	for task, logs := range samples {
		if len(logs) == 0 {
			continue
		}
		if err := writeSamples(dir, task, ts, logs); err != nil {
			return "", err
		}
	}
	return path, nil
}

func writeSamples(dir, task, ts string, logs []runner.SampleLog) error {
	path := filepath.Join(dir, fmt.Sprintf("samples_%s_%s.jsonl", task, ts))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("results: create %q: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, l := range logs {
		if err := enc.Encode(l); err != nil {
			return fmt.Errorf("results: write sample log: %w", err)
		}
	}
	return nil
}
