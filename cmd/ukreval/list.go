package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/movabench/ukreval/internal/tasks"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List task sets and tasks",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(newListTasksCmd())
	return cmd
}

func newListTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List available benchmark tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SET\tTASK\tDESCRIPTION")
			for _, set := range tasks.Sets() {
				list, err := tasks.ForSet(set, "")
				if err != nil {
					return err
				}
				for _, t := range list {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", set, t.Name(), t.Description())
				}
			}
			return tw.Flush()
		},
	}
}
