package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kunalbabre/claude-devtools/internal/config"
	"github.com/kunalbabre/claude-devtools/internal/fs"
	"github.com/kunalbabre/claude-devtools/internal/render"
	"github.com/kunalbabre/claude-devtools/internal/scan"
	"github.com/kunalbabre/claude-devtools/internal/search"
)

func searchCmd() *cobra.Command {
	var project string
	var sessions []string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search user input and final agent answers across sessions",
		Long: `Scans session files newest-first in concurrent batches and prints each
match with a bounded context window. Restrict to one project with --project,
or to specific sessions with --session (repeatable).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			provider := fs.NewLocal()
			query := args[0]

			var projects []string
			if project != "" {
				projects = []string{project}
			} else {
				projects, err = scan.Projects(provider, cfg.ProjectsRoot)
				if err != nil {
					return err
				}
			}

			if limit <= 0 {
				limit = cfg.SearchLimit
			}
			styled := term.IsTerminal(int(os.Stdout.Fd()))

			total := 0
			partial := false
			for _, proj := range projects {
				if total >= limit {
					break
				}
				out, err := search.SearchProject(
					context.Background(), provider,
					fs.Join(cfg.ProjectsRoot, proj), proj, query,
					search.Options{SessionIDs: sessions, Limit: limit - total},
				)
				if err != nil {
					fmt.Fprintf(os.Stderr, "WARN: search %s: %v\n", proj, err)
					continue
				}
				partial = partial || out.Partial
				for _, r := range out.Results {
					fmt.Print(render.SearchResult(r, styled))
					total++
				}
			}

			if total == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
			}
			if partial {
				fmt.Fprintln(os.Stderr, "(partial results)")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Restrict to one project")
	cmd.Flags().StringArrayVar(&sessions, "session", nil, "Restrict to a session id (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (default from config)")

	return cmd
}
