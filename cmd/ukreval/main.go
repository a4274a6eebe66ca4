package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/movabench/ukreval/internal/config"
)

type cliState struct {
	settingsPath string
	cfg          *config.Config
}

var (
	osExit                 = os.Exit
	stderrWriter io.Writer = os.Stderr
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderrWriter, err)
		osExit(1)
	}
}

func newRootCmd() *cobra.Command {
	st := &cliState{settingsPath: config.DefaultSettingsPath}

	root := &cobra.Command{
		Use:           "ukreval",
		Short:         "Run Ukrainian language benchmarks against LLM providers",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&st.settingsPath, "settings", st.settingsPath, "path to settings file")

	root.AddCommand(newRunCmd(st))
	root.AddCommand(newListCmd())
	root.AddCommand(newLeaderboardCmd(st))
	root.AddCommand(newProxyCmd(st))
	return root
}

func loadConfigPreRun(st *cliState) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Context(), st.settingsPath)
		if err != nil {
			return err
		}
		st.cfg = cfg
		return nil
	}
}
