package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kunalbabre/claude-devtools/internal/config"
	"github.com/kunalbabre/claude-devtools/internal/fs"
	"github.com/kunalbabre/claude-devtools/internal/metrics"
	"github.com/kunalbabre/claude-devtools/internal/parse"
	"github.com/kunalbabre/claude-devtools/internal/render"
)

func metricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics <session>",
		Short: "Show token and duration totals for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			provider := fs.NewLocal()

			path, err := resolveSessionPath(cfg, provider, args[0])
			if err != nil {
				return err
			}

			messages, err := parse.ParseSessionFile(provider, path)
			if err != nil {
				return err
			}

			m := metrics.Compute(messages)
			styled := term.IsTerminal(int(os.Stdout.Fd()))
			fmt.Print(render.Metrics(m, styled))
			return nil
		},
	}
	return cmd
}
