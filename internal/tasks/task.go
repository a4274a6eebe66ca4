package tasks

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// SetUkrainianBench is the default benchmark task set.
const SetUkrainianBench = "ukrainian_bench"

// Sample is one rendered benchmark sample: the prompt sent to the model
// and the filtered answer it is scored against.
type Sample struct {
	ID     string
	Prompt string
	Target string
}

// Task is one benchmark task within a set.
type Task interface {
	Name() string
	Description() string
	// Load reads the task's documents and renders them into samples.
	Load(ctx context.Context) ([]Sample, error)
	// Filter reduces a raw model response to a comparable answer.
	Filter(response string) string
}

// ForSet returns the tasks of a named set rooted at tasksPath.
func ForSet(set, tasksPath string) ([]Task, error) {
	switch strings.ToLower(strings.TrimSpace(set)) {
	case SetUkrainianBench:
		return []Task{
			NewARCEasyUK(tasksPath),
			NewBelebeleUK(tasksPath),
			NewHellaSwagUK(tasksPath),
			NewWinograndeUK(tasksPath),
		}, nil
	default:
		return nil, fmt.Errorf("tasks: unknown task set %q", set)
	}
}

// Sets lists the known task set names.
func Sets() []string {
	out := []string{SetUkrainianBench}
	sort.Strings(out)
	return out
}

// Names lists the task names of a set.
func Names(set string) ([]string, error) {
	ts, err := ForSet(set, "")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Name())
	}
	return out, nil
}
