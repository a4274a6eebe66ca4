package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/movabench/ukreval/internal/ci"
	"github.com/movabench/ukreval/internal/dispatch"
	"github.com/movabench/ukreval/internal/leaderboard"
	"github.com/movabench/ukreval/internal/llm"
	"github.com/movabench/ukreval/internal/results"
	"github.com/movabench/ukreval/internal/runner"
	"github.com/movabench/ukreval/internal/tasks"
)

type runOptions struct {
	dbPath    string
	maxTokens int
	noSave    bool
}

func newRunCmd(st *cliState) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:     "run [provider] [model] [base_url]",
		Short:   "Evaluate a model on the configured task sets",
		Args:    cobra.MaximumNArgs(3),
		PreRunE: loadConfigPreRun(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluation(cmd, st, &opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", leaderboard.DefaultDBPath, "leaderboard database path")
	cmd.Flags().IntVar(&opts.maxTokens, "max-tokens", 0, "completion token limit (0 = default)")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "skip the leaderboard database")

	return cmd
}

func runEvaluation(cmd *cobra.Command, st *cliState, opts *runOptions, args []string) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("run: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("run: nil options")
	}

	providerName, model, baseURL := resolveRunArgs(st, args)

	inv, err := dispatch.Resolve(providerName, model, baseURL, st.cfg)
	if err != nil {
		if errors.Is(err, dispatch.ErrUnknownProvider) {
			fmt.Fprintln(stderrWriter, "valid providers: openai, anthropic, local")
		}
		return err
	}

	provider, err := llm.FromInvocation(inv)
	if err != nil {
		return err
	}

	all, err := loadTaskSets(inv)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Evaluating %s via %s\n", inv.Model, inv.Backend)
	if s := inv.ModelArgsString(); s != "" {
		_, _ = fmt.Fprintf(out, "Model args: %s\n", s)
	}

	r := runner.New(provider, runner.Config{
		NumConcurrent: inv.NumConcurrent,
		MaxTokens:     opts.maxTokens,
		LogSamples:    inv.LogSamples,
	})

	started := time.Now().UTC()
	taskResults, runErr := r.RunAll(ctx, all)
	finished := time.Now().UTC()
	if runErr != nil && len(taskResults) == 0 {
		return runErr
	}

	run := &results.RunResult{
		Model:             inv.Model,
		Backend:           string(inv.Backend),
		ModelArgs:         inv.ModelArgsString(),
		Tasks:             results.FromTaskResults(taskResults),
		NumConcurrent:     inv.NumConcurrent,
		MaxRetries:        inv.MaxRetries,
		ApplyChatTemplate: inv.ApplyChatTemplate,
		StartedAt:         started,
		FinishedAt:        finished,
	}

	samples := make(map[string][]runner.SampleLog, len(taskResults))
	if inv.LogSamples {
		for _, tr := range taskResults {
			if tr != nil && len(tr.Samples) > 0 {
				samples[tr.Task] = tr.Samples
			}
		}
	}

	path, err := results.Write(inv.OutputPath, run, samples)
	if err != nil {
		return err
	}

	if !opts.noSave && strings.TrimSpace(opts.dbPath) != "" {
		if err := saveToLeaderboard(cmd.Context(), opts.dbPath, run); err != nil {
			return err
		}
	}

	if err := ci.PublishRun(run); err != nil {
		fmt.Fprintf(stderrWriter, "warning: publish run summary: %v\n", err)
	}

	for _, tr := range taskResults {
		if tr == nil {
			continue
		}
		_, _ = fmt.Fprintf(out, "Task %s: accuracy=%.4f (%d/%d) errors=%d time_ms=%d tokens=%d\n",
			tr.Task, tr.Accuracy, tr.Correct, tr.Total, tr.Errors, tr.TotalLatencyMs, tr.TotalTokens)
	}
	_, _ = fmt.Fprintf(out, "Results saved: %s\n", path)

	return runErr
}

// resolveRunArgs layers positional arguments over the resolved
// configuration. The provider itself defaults to openai.
func resolveRunArgs(st *cliState, args []string) (provider, model, baseURL string) {
	provider = st.cfg.Provider
	model = st.cfg.Model
	baseURL = st.cfg.BaseURL

	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		provider = args[0]
	}
	if len(args) > 1 && strings.TrimSpace(args[1]) != "" {
		model = args[1]
	}
	if len(args) > 2 && strings.TrimSpace(args[2]) != "" {
		baseURL = args[2]
	}

	if strings.TrimSpace(provider) == "" {
		provider = "openai"
	}
	return provider, model, baseURL
}

func loadTaskSets(inv *dispatch.Invocation) ([]tasks.Task, error) {
	var all []tasks.Task
	for _, set := range inv.Tasks {
		list, err := tasks.ForSet(set, inv.TasksPath)
		if err != nil {
			return nil, err
		}
		all = append(all, list...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("run: no tasks resolved from %q", strings.Join(inv.Tasks, ","))
	}
	return all, nil
}

func saveToLeaderboard(ctx context.Context, dbPath string, run *results.RunResult) error {
	lb, err := leaderboard.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer lb.Close()
	return lb.SaveRun(ctx, run)
}
