package runner

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/movabench/ukreval/internal/llm"
	"github.com/movabench/ukreval/internal/tasks"
)

const defaultMaxTokens = 256

// Config bounds a harness run.
type Config struct {
	// NumConcurrent caps in-flight requests per task.
	NumConcurrent int
	// MaxTokens per completion; benchmark answers are short.
	MaxTokens int
	// LogSamples keeps per-sample records on the task result.
	LogSamples bool
}

// SampleLog is one scored request/response pair.
type SampleLog struct {
	ID           string `json:"id"`
	Prompt       string `json:"prompt"`
	RawResponse  string `json:"raw_response"`
	Filtered     string `json:"filtered"`
	Target       string `json:"target"`
	Correct      bool   `json:"correct"`
	LatencyMs    int64  `json:"latency_ms"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	Error        string `json:"error,omitempty"`
}

// TaskResult aggregates one task's run.
type TaskResult struct {
	Task           string      `json:"task"`
	Total          int         `json:"total"`
	Correct        int         `json:"correct"`
	Errors         int         `json:"errors"`
	Accuracy       float64     `json:"accuracy"`
	TotalLatencyMs int64       `json:"total_latency_ms"`
	TotalTokens    int         `json:"total_tokens"`
	Samples        []SampleLog `json:"samples,omitempty"`
}

// Runner drives tasks against one provider.
type Runner struct {
	provider llm.Provider
	cfg      Config
}

func New(provider llm.Provider, cfg Config) *Runner {
	if cfg.NumConcurrent <= 0 {
		cfg.NumConcurrent = 1
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return &Runner{provider: provider, cfg: cfg}
}

// RunTask loads a task and scores every sample. Request failures are
// recorded per sample and count as incorrect; only a cancelled context
// aborts the task.
func (r *Runner) RunTask(ctx context.Context, task tasks.Task) (*TaskResult, error) {
	if r == nil {
		return nil, errors.New("runner: nil runner")
	}
	if ctx == nil {
		return nil, errors.New("runner: nil context")
	}
	if r.provider == nil {
		return nil, errors.New("runner: nil provider")
	}
	if task == nil {
		return nil, errors.New("runner: nil task")
	}

	samples, err := task.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, errors.New("runner: task " + task.Name() + " has no samples")
	}

	logs := make([]SampleLog, len(samples))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.NumConcurrent)
	for i, s := range samples {
		i, s := i, s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			logs[i] = r.runSample(gctx, task, s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &TaskResult{Task: task.Name(), Total: len(logs)}
	for _, l := range logs {
		if l.Correct {
			out.Correct++
		}
		if l.Error != "" {
			out.Errors++
		}
		out.TotalLatencyMs += l.LatencyMs
		out.TotalTokens += l.InputTokens + l.OutputTokens
	}
	if out.Total > 0 {
		out.Accuracy = float64(out.Correct) / float64(out.Total)
	}
	if r.cfg.LogSamples {
		out.Samples = logs
	}
	return out, nil
}

func (r *Runner) runSample(ctx context.Context, task tasks.Task, s tasks.Sample) SampleLog {
	log := SampleLog{
		ID:     s.ID,
		Prompt: s.Prompt,
		Target: s.Target,
	}

	start := time.Now()
	resp, err := r.provider.Complete(ctx, &llm.Request{
		Messages:  []llm.Message{{Role: "user", Content: s.Prompt}},
		MaxTokens: r.cfg.MaxTokens,
	})
	log.LatencyMs = time.Since(start).Milliseconds()

	if err != nil {
		log.Error = err.Error()
		return log
	}
	if resp == nil {
		log.Error = "nil response"
		return log
	}

	log.RawResponse = resp.Text
	log.Filtered = task.Filter(resp.Text)
	log.Correct = log.Filtered != "" && log.Filtered == s.Target
	log.InputTokens = resp.Usage.InputTokens
	log.OutputTokens = resp.Usage.OutputTokens
	return log
}

// RunAll runs tasks in order, stopping on context cancellation.
func (r *Runner) RunAll(ctx context.Context, list []tasks.Task) ([]*TaskResult, error) {
	if len(list) == 0 {
		return nil, errors.New("runner: no tasks")
	}

	out := make([]*TaskResult, 0, len(list))
	for _, task := range list {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := r.RunTask(ctx, task)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}
