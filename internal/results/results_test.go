package results

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/movabench/ukreval/internal/runner"
)

func sampleRun(model string, finished time.Time) *RunResult {
	return &RunResult{
		Model:     model,
		Backend:   "openai",
		ModelArgs: "model=" + model + ",base_url=https://api.openai.com/v1/chat/completions,num_concurrent=8,max_retries=3",
		Tasks: map[string]TaskScore{
			"arc_easy_uk": {Accuracy: 0.75, Correct: 3, Total: 4, LatencyMs: 1200, Tokens: 80},
		},
		NumConcurrent:     8,
		MaxRetries:        3,
		ApplyChatTemplate: true,
		StartedAt:         finished.Add(-time.Minute),
		FinishedAt:        finished,
	}
}

func TestModelDir(t *testing.T) {
	t.Parallel()

	if got := ModelDir("openai/gpt-oss-20b"); got != "openai__gpt-oss-20b" {
		t.Errorf("ModelDir: got %q", got)
	}
	if got := ModelDir(" plain-model "); got != "plain-model" {
		t.Errorf("ModelDir: got %q", got)
	}
}

func TestWriteAndLatest(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	finished := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

	path, err := Write(out, sampleRun("openai/gpt-oss-20b", finished), map[string][]runner.SampleLog{
		"arc_easy_uk": {
			{ID: "q1", Prompt: "Питання: ...", RawResponse: "B", Filtered: "B", Target: "B", Correct: true},
		},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(path, "openai__gpt-oss-20b") {
		t.Errorf("results path: got %q", path)
	}
	if filepath.Base(path) != "results_2026-08-26T10-00-00.json" {
		t.Errorf("results file name: got %q", filepath.Base(path))
	}

	run, err := Latest(out, "openai__gpt-oss-20b")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if run.Model != "openai/gpt-oss-20b" {
		t.Errorf("Model: got %q", run.Model)
	}
	score, ok := run.Tasks["arc_easy_uk"]
	if !ok || score.Accuracy != 0.75 {
		t.Errorf("Tasks: got %+v", run.Tasks)
	}

	// Sample log file is written next to the results file.
	samplesPath := filepath.Join(filepath.Dir(path), "samples_arc_easy_uk_2026-08-26T10-00-00.jsonl")
	f, err := os.Open(samplesPath)
	if err != nil {
		t.Fatalf("open samples: %v", err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	lines := 0
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			lines++
		}
	}
	if lines != 1 {
		t.Errorf("sample lines: got %d", lines)
	}
}

func TestLatestPicksNewest(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	older := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)

	runOld := sampleRun("m", older)
	runOld.Tasks = map[string]TaskScore{"arc_easy_uk": {Accuracy: 0.5}}
	if _, err := Write(out, runOld, nil); err != nil {
		t.Fatalf("Write old: %v", err)
	}
	runNew := sampleRun("m", newer)
	runNew.Tasks = map[string]TaskScore{"arc_easy_uk": {Accuracy: 0.9}}
	if _, err := Write(out, runNew, nil); err != nil {
		t.Fatalf("Write new: %v", err)
	}

	run, err := Latest(out, "m")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if run.Tasks["arc_easy_uk"].Accuracy != 0.9 {
		t.Errorf("Latest picked the wrong file: %+v", run.Tasks)
	}

	history, err := History(out, "m")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("History: got %d entries", len(history))
	}
	if !history[0].FinishedAt.Before(history[1].FinishedAt) {
		t.Errorf("History order: %v, %v", history[0].FinishedAt, history[1].FinishedAt)
	}
}

func TestListModels(t *testing.T) {
	t.Parallel()

	out := t.TempDir()

	models, err := ListModels(out)
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 0 {
		t.Errorf("ListModels on empty dir: got %v", models)
	}

	finished := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	if _, err := Write(out, sampleRun("b-model", finished), nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := Write(out, sampleRun("a-model", finished), nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// A directory without result files is skipped.
	if err := os.MkdirAll(filepath.Join(out, "empty-dir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	models, err = ListModels(out)
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 || models[0] != "a-model" || models[1] != "b-model" {
		t.Errorf("ListModels: got %v", models)
	}

	// Missing output path is an empty dashboard.
	models, err = ListModels(filepath.Join(out, "nope"))
	if err != nil || len(models) != 0 {
		t.Errorf("ListModels missing dir: %v, %v", models, err)
	}
}

func TestFromTaskResults(t *testing.T) {
	t.Parallel()

	scores := FromTaskResults([]*runner.TaskResult{
		{Task: "arc_easy_uk", Total: 4, Correct: 3, Accuracy: 0.75, TotalLatencyMs: 100, TotalTokens: 40},
		nil,
	})
	if len(scores) != 1 {
		t.Fatalf("scores: got %d", len(scores))
	}
	if s := scores["arc_easy_uk"]; s.Correct != 3 || s.Total != 4 {
		t.Errorf("score: got %+v", s)
	}
}
