package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/movabench/ukreval/internal/config"
	"github.com/movabench/ukreval/internal/dispatch"
	"github.com/movabench/ukreval/internal/leaderboard"
)

func clearEvalEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_API_BASE",
		"ANTHROPIC_API_KEY", "GROQ_API_KEY", "HF_TOKEN",
		"NUM_CONCURRENT", "MAX_RETRIES", "OUTPUT_PATH",
		"TASKS", "TASKS_PATH", "GITHUB_ACTIONS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	oldStderr := stderrWriter
	var errBuf bytes.Buffer
	stderrWriter = &errBuf
	t.Cleanup(func() { stderrWriter = oldStderr })

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errBuf.String(), err
}

func TestCLI_ListTasks(t *testing.T) {
	clearEvalEnv(t)

	out, _, err := executeCLI(t, "list", "tasks")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, name := range []string{"arc_easy_uk", "belebele_uk", "hellaswag_uk", "winogrande_uk"} {
		if !strings.Contains(out, name) {
			t.Errorf("output missing task %q:\n%s", name, out)
		}
	}
}

func TestCLI_Help(t *testing.T) {
	clearEvalEnv(t)

	out, _, err := executeCLI(t, "--help")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("root help missing usage:\n%s", out)
	}
	for _, sub := range []string{"run", "list", "leaderboard", "proxy"} {
		if !strings.Contains(out, sub) {
			t.Errorf("root help missing subcommand %q:\n%s", sub, out)
		}
	}

	out, _, err = executeCLI(t, "run", "-h")
	if err != nil {
		t.Fatalf("Execute run -h: %v", err)
	}
	if !strings.Contains(out, "run [provider] [model] [base_url]") {
		t.Errorf("run help missing usage line:\n%s", out)
	}
}

func TestCLI_Run_UnknownProvider(t *testing.T) {
	clearEvalEnv(t)

	_, stderr, err := executeCLI(t, "run", "bogus", "some-model")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unknown provider") {
		t.Fatalf("error: got %q", err)
	}
	if !strings.Contains(stderr, "valid providers") {
		t.Fatalf("stderr: got %q", stderr)
	}
}

func TestCLI_Run_MissingModel(t *testing.T) {
	clearEvalEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	_, _, err := executeCLI(t, "run", "openai")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "missing model") {
		t.Fatalf("error: got %q", err)
	}
}

func TestCLI_Run_MissingOpenAIKey(t *testing.T) {
	clearEvalEnv(t)

	_, _, err := executeCLI(t, "run", "openai", "gpt-4o-mini")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("error: got %q", err)
	}
}

func TestCLI_Run_LocalEndToEnd(t *testing.T) {
	clearEvalEnv(t)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"choices": [
				{"index": 0, "message": {"role": "assistant", "content": "A"}, "finish_reason": "stop"}
			],
			"usage": {"prompt_tokens": 10, "completion_tokens": 1, "total_tokens": 11}
		}`))
	}))
	defer upstream.Close()

	outDir := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "lb.db")
	t.Setenv("OUTPUT_PATH", outDir)
	t.Setenv("TASKS_PATH", filepath.Join(t.TempDir(), "no-tasks-here"))
	t.Setenv("NUM_CONCURRENT", "2")
	t.Setenv("MAX_RETRIES", "0")

	out, _, err := executeCLI(t, "run", "local", "test-model", upstream.URL, "--db", dbPath)
	if err != nil {
		t.Fatalf("Execute: %v (output %s)", err, out)
	}
	if !strings.Contains(out, "Results saved:") {
		t.Fatalf("output: got %q", out)
	}
	if !strings.Contains(out, "base_url="+upstream.URL+"/chat/completions") {
		t.Fatalf("model args missing normalized base url:\n%s", out)
	}

	entries, err := os.ReadDir(filepath.Join(outDir, "test-model"))
	if err != nil {
		t.Fatalf("ReadDir results: %v", err)
	}
	var haveResults bool
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "results_") && strings.HasSuffix(e.Name(), ".json") {
			haveResults = true
		}
	}
	if !haveResults {
		t.Fatalf("no results file written: %v", entries)
	}

	lb, err := leaderboard.NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer lb.Close()
	standings, err := lb.Overall(context.Background(), 10)
	if err != nil {
		t.Fatalf("Overall: %v", err)
	}
	if len(standings) != 1 || standings[0].Model != "test-model" {
		t.Fatalf("standings: got %+v", standings)
	}
}

func TestCLI_Leaderboard(t *testing.T) {
	clearEvalEnv(t)

	dbPath := filepath.Join(t.TempDir(), "lb.db")
	lb, err := leaderboard.NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	err = lb.Save(context.Background(), &leaderboard.Entry{
		Model:    "m1",
		Backend:  "openai",
		Task:     "arc_easy_uk",
		Accuracy: 0.85,
		Correct:  17,
		Total:    20,
		EvalDate: time.UnixMilli(1000).UTC(),
	})
	if cerr := lb.Close(); cerr != nil {
		t.Fatalf("Close: %v", cerr)
	}
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, _, err := executeCLI(t, "leaderboard", "--db", dbPath, "--task", "arc_easy_uk")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "m1") || !strings.Contains(out, "0.8500") {
		t.Fatalf("output: got %q", out)
	}

	out, _, err = executeCLI(t, "leaderboard", "--db", dbPath, "--format", "json")
	if err != nil {
		t.Fatalf("Execute json: %v", err)
	}
	if !strings.Contains(out, `"avg_accuracy"`) {
		t.Fatalf("json output: got %q", out)
	}

	_, _, err = executeCLI(t, "leaderboard", "--db", dbPath, "--format", "yaml")
	if err == nil || !strings.Contains(err.Error(), "invalid --format") {
		t.Fatalf("format error: got %v", err)
	}
}

func TestCLI_Proxy_UnknownMode(t *testing.T) {
	clearEvalEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk-test")

	_, _, err := executeCLI(t, "proxy", "--mode", "nope")
	if err == nil || !strings.Contains(err.Error(), "unknown --mode") {
		t.Fatalf("error: got %v", err)
	}
}

func TestCLI_Proxy_GroqRequiresKey(t *testing.T) {
	clearEvalEnv(t)

	_, _, err := executeCLI(t, "proxy", "--mode", "groq")
	if err == nil || !strings.Contains(err.Error(), "groq api key") {
		t.Fatalf("error: got %v", err)
	}
}

func TestCLI_Proxy_ReasoningRequiresTarget(t *testing.T) {
	clearEvalEnv(t)

	_, _, err := executeCLI(t, "proxy", "--mode", "reasoning")
	if err == nil || !strings.Contains(err.Error(), "target") {
		t.Fatalf("error: got %v", err)
	}
}

func TestResolveRunArgs(t *testing.T) {
	st := &cliState{cfg: &config.Config{
		Model:   "cfg-model",
		BaseURL: "http://cfg.example",
	}}

	provider, model, base := resolveRunArgs(st, nil)
	if provider != "openai" || model != "cfg-model" || base != "http://cfg.example" {
		t.Fatalf("defaults: got %q %q %q", provider, model, base)
	}

	provider, model, base = resolveRunArgs(st, []string{"local", "cli-model", "http://cli.example"})
	if provider != "local" || model != "cli-model" || base != "http://cli.example" {
		t.Fatalf("overrides: got %q %q %q", provider, model, base)
	}
}

func TestNormalizedBaseURLInModelArgs(t *testing.T) {
	clearEvalEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := config.Load(context.Background(), "no-such-settings.yaml")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	inv, err := dispatch.Resolve("openai", "gpt-4o-mini", "https://example.com/v1/", cfg)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if inv.BaseURL != "https://example.com/v1/chat/completions" {
		t.Fatalf("base url: got %q", inv.BaseURL)
	}
}
