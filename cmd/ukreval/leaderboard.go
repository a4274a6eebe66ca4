package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/movabench/ukreval/internal/leaderboard"
)

type leaderboardOptions struct {
	dbPath string
	task   string
	top    int
	format string
}

func newLeaderboardCmd(st *cliState) *cobra.Command {
	var opts leaderboardOptions

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show saved benchmark scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeaderboard(cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", leaderboard.DefaultDBPath, "leaderboard database path")
	cmd.Flags().StringVar(&opts.task, "task", "", "task name (empty = overall standings)")
	cmd.Flags().IntVar(&opts.top, "top", 20, "top N entries")
	cmd.Flags().StringVar(&opts.format, "format", "table", "output format: table|json")

	return cmd
}

func runLeaderboard(cmd *cobra.Command, opts *leaderboardOptions) error {
	if opts == nil {
		return fmt.Errorf("leaderboard: nil options")
	}

	lb, err := leaderboard.NewStore(opts.dbPath)
	if err != nil {
		return err
	}
	defer lb.Close()

	format := strings.ToLower(strings.TrimSpace(opts.format))
	if format == "" {
		format = "table"
	}
	if format != "table" && format != "json" {
		return fmt.Errorf("leaderboard: invalid --format %q (expected table|json)", opts.format)
	}

	if task := strings.TrimSpace(opts.task); task != "" {
		entries, err := lb.Top(cmd.Context(), task, opts.top)
		if err != nil {
			return err
		}
		if format == "json" {
			return writeJSON(cmd, entries)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RANK\tMODEL\tBACKEND\tACCURACY\tCORRECT\tTOTAL\tLAT(ms)\tDATE")
		for i, e := range entries {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%.4f\t%d\t%d\t%d\t%s\n",
				i+1,
				e.Model,
				e.Backend,
				e.Accuracy,
				e.Correct,
				e.Total,
				e.LatencyMs,
				e.EvalDate.UTC().Format("2006-01-02 15:04:05Z"),
			)
		}
		return tw.Flush()
	}

	standings, err := lb.Overall(cmd.Context(), opts.top)
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(cmd, standings)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tMODEL\tBACKEND\tAVG ACCURACY\tTASKS\tLAST EVAL")
	for i, s := range standings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.4f\t%d\t%s\n",
			i+1,
			s.Model,
			s.Backend,
			s.AvgAccuracy,
			s.Tasks,
			s.LastEval.UTC().Format("2006-01-02 15:04:05Z"),
		)
	}
	return tw.Flush()
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
