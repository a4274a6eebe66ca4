package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/movabench/ukreval/internal/proxy"
)

type proxyOptions struct {
	mode            string
	addr            string
	target          string
	reasoningHidden bool
	reasoningEffort string
}

func newProxyCmd(st *cliState) *cobra.Command {
	var opts proxyOptions

	cmd := &cobra.Command{
		Use:     "proxy",
		Short:   "Run a chat-completions proxy for quirky backends",
		Args:    cobra.NoArgs,
		PreRunE: loadConfigPreRun(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProxy(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", "groq", "proxy mode: groq|reasoning")
	cmd.Flags().StringVar(&opts.addr, "addr", ":8787", "listen address")
	cmd.Flags().StringVar(&opts.target, "target", "", "upstream base URL (reasoning mode)")
	cmd.Flags().BoolVar(&opts.reasoningHidden, "reasoning-hidden", true, "ask groq to hide reasoning output")
	cmd.Flags().StringVar(&opts.reasoningEffort, "reasoning-effort", "", "reasoning effort forwarded to groq")

	return cmd
}

func runProxy(cmd *cobra.Command, st *cliState, opts *proxyOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("proxy: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("proxy: nil options")
	}

	switch strings.ToLower(strings.TrimSpace(opts.mode)) {
	case "groq":
		p, err := proxy.NewGroqProxy(st.cfg.GroqAPIKey,
			proxy.WithReasoningHidden(opts.reasoningHidden),
			proxy.WithReasoningEffort(opts.reasoningEffort),
		)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "groq proxy listening on %s\n", opts.addr)
		return p.Router().Run(opts.addr)

	case "reasoning":
		p, err := proxy.NewReasoningProxy(opts.target)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reasoning proxy listening on %s (target %s)\n", opts.addr, opts.target)
		return p.Router().Run(opts.addr)

	default:
		return fmt.Errorf("proxy: unknown --mode %q (expected groq|reasoning)", opts.mode)
	}
}
