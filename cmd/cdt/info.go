package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kunalbabre/claude-devtools/internal/analyze"
	"github.com/kunalbabre/claude-devtools/internal/config"
	"github.com/kunalbabre/claude-devtools/internal/fs"
	"github.com/kunalbabre/claude-devtools/internal/render"
)

func infoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <session>",
		Short: "Show session metadata: title, counts, liveness, context consumption",
		Long: `Runs a single streaming pass over the session file and prints the derived
metadata. <session> is a file path or a <project>/<session-id> reference.`,
		Args: cobra.ExactArgs(1),
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

			info, err := analyze.AnalyzeSessionFile(provider, path)
			if err != nil {
				return err
			}

			styled := term.IsTerminal(int(os.Stdout.Fd()))
			fmt.Print(render.SessionInfo(info, styled))
			return nil
		},
	}
	return cmd
}
