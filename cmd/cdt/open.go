package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/kunalbabre/claude-devtools/internal/config"
	"github.com/kunalbabre/claude-devtools/internal/fs"
)

func openCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <session>",
		Short: "Open a session file in $EDITOR",
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

			editor := os.Getenv("EDITOR")
			if editor == "" {
				editor = "less"
			}

			c := exec.Command(editor, path)
			c.Stdin = os.Stdin
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			if err := c.Run(); err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			return nil
		},
	}
	return cmd
}
