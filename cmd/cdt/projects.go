package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kunalbabre/claude-devtools/internal/config"
	"github.com/kunalbabre/claude-devtools/internal/fs"
	"github.com/kunalbabre/claude-devtools/internal/scan"
)

func projectsCmd() *cobra.Command {
	var sessions bool

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects under the configured projects root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			provider := fs.NewLocal()

			names, err := scan.Projects(provider, cfg.ProjectsRoot)
			if err != nil {
				return err
			}
			for _, name := range names {
				if !sessions {
					fmt.Println(name)
					continue
				}
				files, err := scan.SessionFiles(provider, fs.Join(cfg.ProjectsRoot, name))
				if err != nil {
					fmt.Printf("%s\t(unreadable)\n", name)
					continue
				}
				fmt.Printf("%s\t%d sessions\n", name, len(files))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&sessions, "sessions", false, "Show per-project session counts")

	return cmd
}
