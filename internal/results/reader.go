package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoResults marks a model directory with no stored result files.
var ErrNoResults = errors.New("results: no results for model")

// ListModels returns the model directory names under outputPath that
// contain at least one results file. A missing output directory is an
// empty dashboard, not an error.
func ListModels(outputPath string) ([]string, error) {
	entries, err := os.ReadDir(outputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("results: read %q: %w", outputPath, err)
	}

	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		files, err := resultFiles(filepath.Join(outputPath, e.Name()))
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// Latest loads the newest result file for a model directory.
func Latest(outputPath, modelDir string) (*RunResult, error) {
	files, err := resultFiles(filepath.Join(outputPath, modelDir))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoResults, modelDir)
	}
	return readRun(files[len(files)-1])
}

// History loads every result file for a model directory, oldest first.
func History(outputPath, modelDir string) ([]*RunResult, error) {
	files, err := resultFiles(filepath.Join(outputPath, modelDir))
	if err != nil {
		return nil, err
	}

	out := make([]*RunResult, 0, len(files))
	for _, f := range files {
		run, err := readRun(f)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}

// resultFiles lists results*.json in a model directory sorted by name;
// the timestamp layout makes lexicographic order chronological.
func resultFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("results: read %q: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "results") && strings.HasSuffix(name, ".json") {
			out = append(out, filepath.Join(dir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

func readRun(path string) (*RunResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("results: read %q: %w", path, err)
	}
	var run RunResult
	if err := json.Unmarshal(b, &run); err != nil {
		return nil, fmt.Errorf("results: parse %q: %w", path, err)
	}
	return &run, nil
}
