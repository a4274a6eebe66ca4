package ci

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/movabench/ukreval/internal/results"
)

// DetectCI returns true if running in GitHub Actions.
func DetectCI() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("GITHUB_ACTIONS")), "true")
}

// SetOutput sets a GitHub Actions output variable.
func SetOutput(name, value string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if path := strings.TrimSpace(os.Getenv("GITHUB_OUTPUT")); path != "" {
		_ = appendGitHubCommandFile(path, fmt.Sprintf("%s<<EOF\n%s\nEOF\n", name, value))
		return
	}
	fmt.Printf("::set-output name=%s::%s\n", name, escapeCommandValue(value))
}

// RunSummary renders a markdown job summary for a finished run.
func RunSummary(run *results.RunResult) string {
	if run == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s (%s)\n\n", run.Model, run.Backend)
	b.WriteString("| Task | Accuracy | Correct | Total | Errors |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")

	names := make([]string, 0, len(run.Tasks))
	for name := range run.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := run.Tasks[name]
		fmt.Fprintf(&b, "| %s | %.4f | %d | %d | %d |\n", name, s.Accuracy, s.Correct, s.Total, s.Errors)
	}
	return b.String()
}

// PublishRun writes the job summary and sets step outputs for a run.
// Outside GitHub Actions it does nothing.
func PublishRun(run *results.RunResult) error {
	if !DetectCI() || run == nil {
		return nil
	}

	var total, correct int
	for _, s := range run.Tasks {
		total += s.Total
		correct += s.Correct
	}
	accuracy := 0.0
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}
	SetOutput("model", run.Model)
	SetOutput("accuracy", fmt.Sprintf("%.4f", accuracy))

	return SetJobSummary(RunSummary(run))
}

// SetJobSummary writes markdown to the job summary.
func SetJobSummary(markdown string) error {
	path := strings.TrimSpace(os.Getenv("GITHUB_STEP_SUMMARY"))
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if !strings.HasSuffix(markdown, "\n") {
		markdown += "\n"
	}
	return appendGitHubCommandFile(path, markdown)
}

func appendGitHubCommandFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(content)
	return err
}

func escapeCommandValue(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}
