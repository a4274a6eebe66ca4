package tasks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestForSet(t *testing.T) {
	t.Parallel()

	ts, err := ForSet("ukrainian_bench", "./tasks")
	if err != nil {
		t.Fatalf("ForSet: %v", err)
	}
	if len(ts) != 4 {
		t.Fatalf("ForSet: got %d tasks, want 4", len(ts))
	}

	want := []string{"arc_easy_uk", "belebele_uk", "hellaswag_uk", "winogrande_uk"}
	for i, task := range ts {
		if task.Name() != want[i] {
			t.Errorf("task %d: got %q, want %q", i, task.Name(), want[i])
		}
	}

	if _, err := ForSet("nonexistent_bench", "./tasks"); err == nil {
		t.Fatalf("ForSet: expected error for unknown set")
	}
}

func TestNames(t *testing.T) {
	t.Parallel()

	names, err := Names(SetUkrainianBench)
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	if len(names) != 4 {
		t.Errorf("Names: got %v", names)
	}
}

func TestARCEasyUK_SampleFallback(t *testing.T) {
	t.Parallel()

	task := NewARCEasyUK(filepath.Join(t.TempDir(), "missing"))
	samples, err := task.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(samples) == 0 {
		t.Fatalf("Load: empty fallback sample")
	}

	s := samples[0]
	if !strings.HasPrefix(s.Prompt, "Питання: ") {
		t.Errorf("Prompt prefix: got %q", s.Prompt)
	}
	if !strings.HasSuffix(s.Prompt, "Відповідь:") {
		t.Errorf("Prompt suffix: got %q", s.Prompt)
	}
	if !strings.Contains(s.Prompt, "A. ") || !strings.Contains(s.Prompt, "B. ") {
		t.Errorf("Prompt choices: got %q", s.Prompt)
	}
	if s.Target != "B" {
		t.Errorf("Target: got %q", s.Target)
	}
}

func TestARCEasyUK_LoadJSONL(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	taskDir := filepath.Join(dir, SetUkrainianBench, "arc_easy_uk")
	if err := os.MkdirAll(taskDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	data := `{"id":"q1","question":"Скільки буде 2+2?","choices":{"text":["3","4","5","6"],"label":["A","B","C","D"]},"answerKey":"B"}
{"id":"q2","question":"","choices":{"text":["x"],"label":["A"]},"answerKey":"A"}
`
	if err := os.WriteFile(filepath.Join(taskDir, "data.jsonl"), []byte(data), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}

	task := NewARCEasyUK(dir)
	samples, err := task.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// The empty question must be skipped.
	if len(samples) != 1 {
		t.Fatalf("Load: got %d samples, want 1", len(samples))
	}
	if samples[0].ID != "q1" || samples[0].Target != "B" {
		t.Errorf("sample: got %+v", samples[0])
	}
}

func TestHellaSwagUK_Preprocess(t *testing.T) {
	t.Parallel()

	in := "Прибирання: [header] крок перший [title] далі  текст"
	got := preprocessHellaSwag(in)
	if strings.Contains(got, "[") || strings.Contains(got, "]") {
		t.Errorf("brackets not removed: %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Errorf("double spaces not collapsed: %q", got)
	}
}

func TestHellaSwagUK_SampleFallback(t *testing.T) {
	t.Parallel()

	task := NewHellaSwagUK(filepath.Join(t.TempDir(), "missing"))
	samples, err := task.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(samples) == 0 {
		t.Fatalf("Load: empty fallback sample")
	}

	s := samples[0]
	if !strings.Contains(s.Prompt, "Оберіть найкращий варіант продовження:") {
		t.Errorf("Prompt: got %q", s.Prompt)
	}
	if s.Target != "A" {
		t.Errorf("Target: got %q", s.Target)
	}
}

func TestHellaSwagUK_GoldLabelFormats(t *testing.T) {
	t.Parallel()

	if got, ok := parseGoldLabel([]byte(`2`)); !ok || got != 2 {
		t.Errorf("numeric label: got %d, %v", got, ok)
	}
	if got, ok := parseGoldLabel([]byte(`"3"`)); !ok || got != 3 {
		t.Errorf("string label: got %d, %v", got, ok)
	}
	if _, ok := parseGoldLabel([]byte(`"x"`)); ok {
		t.Errorf("bogus label accepted")
	}
	if _, ok := parseGoldLabel(nil); ok {
		t.Errorf("empty label accepted")
	}
}

func TestBelebeleUK_SampleFallback(t *testing.T) {
	t.Parallel()

	task := NewBelebeleUK(filepath.Join(t.TempDir(), "missing"))
	samples, err := task.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(samples) == 0 {
		t.Fatalf("Load: empty fallback sample")
	}

	s := samples[0]
	if !strings.HasPrefix(s.Prompt, "Уривок: ") {
		t.Errorf("Prompt prefix: got %q", s.Prompt)
	}
	if !strings.HasSuffix(s.Prompt, "Відповідь (введіть номер 1, 2, 3 або 4):") {
		t.Errorf("Prompt suffix: got %q", s.Prompt)
	}
	if s.Target != "2" {
		t.Errorf("Target: got %q", s.Target)
	}
	if got := task.Filter("Відповідь: 2"); got != s.Target {
		t.Errorf("Filter: got %q, want %q", got, s.Target)
	}
}

func TestWinograndeUK_SampleFallback(t *testing.T) {
	t.Parallel()

	task := NewWinograndeUK(filepath.Join(t.TempDir(), "missing"))
	samples, err := task.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("Load: got %d samples, want 2", len(samples))
	}

	if samples[0].Target != "A" || samples[1].Target != "B" {
		t.Errorf("Targets: got %q, %q", samples[0].Target, samples[1].Target)
	}
	if !strings.Contains(samples[0].Prompt, "Заповніть пропуск (_)") {
		t.Errorf("Prompt: got %q", samples[0].Prompt)
	}
}

func TestWinograndeUK_SkipsBlanklessSentence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	taskDir := filepath.Join(dir, SetUkrainianBench, "winogrande_uk")
	if err := os.MkdirAll(taskDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data := `{"sentence":"Речення без пропуску.","option1":"а","option2":"б","answer":"1"}
{"sentence":"Речення з _ пропуском.","option1":"а","option2":"б","answer":"2"}
`
	if err := os.WriteFile(filepath.Join(taskDir, "data.jsonl"), []byte(data), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}

	task := NewWinograndeUK(dir)
	samples, err := task.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("Load: got %d samples, want 1", len(samples))
	}
	if samples[0].Target != "B" {
		t.Errorf("Target: got %q", samples[0].Target)
	}
}
