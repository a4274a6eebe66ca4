package results

import (
	"time"

	"github.com/movabench/ukreval/internal/runner"
)

// TaskScore is one task's aggregate in a stored result file.
type TaskScore struct {
	Accuracy  float64 `json:"accuracy"`
	Correct   int     `json:"correct"`
	Total     int     `json:"total"`
	Errors    int     `json:"errors"`
	LatencyMs int64   `json:"latency_ms"`
	Tokens    int     `json:"tokens"`
}

// RunResult is the on-disk result-file layout the dashboard reads:
// eval-results/<model>/results_<timestamp>.json.
type RunResult struct {
	Model             string               `json:"model"`
	Backend           string               `json:"backend"`
	ModelArgs         string               `json:"model_args"`
	Tasks             map[string]TaskScore `json:"results"`
	NumConcurrent     int                  `json:"num_concurrent"`
	MaxRetries        int                  `json:"max_retries"`
	ApplyChatTemplate bool                 `json:"apply_chat_template"`
	StartedAt         time.Time            `json:"started_at"`
	FinishedAt        time.Time            `json:"finished_at"`
}

// FromTaskResults converts harness output into stored task scores.
func FromTaskResults(list []*runner.TaskResult) map[string]TaskScore {
	out := make(map[string]TaskScore, len(list))
	for _, r := range list {
		if r == nil {
			continue
		}
		out[r.Task] = TaskScore{
			Accuracy:  r.Accuracy,
			Correct:   r.Correct,
			Total:     r.Total,
			Errors:    r.Errors,
			LatencyMs: r.TotalLatencyMs,
			Tokens:    r.TotalTokens,
		}
	}
	return out
}
