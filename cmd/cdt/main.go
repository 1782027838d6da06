package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kunalbabre/claude-devtools/internal/config"
	"github.com/kunalbabre/claude-devtools/internal/fs"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "cdt",
		Short:   "claude-devtools - inspect, analyze and search AI coding-agent session logs",
		Version: version,
	}

	rootCmd.AddCommand(projectsCmd())
	rootCmd.AddCommand(infoCmd())
	rootCmd.AddCommand(metricsCmd())
	rootCmd.AddCommand(messagesCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(openCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveSessionPath accepts either a direct file path or a
// "<project>/<session-id>" reference under the configured projects root.
func resolveSessionPath(cfg *config.Config, p fs.Provider, ref string) (string, error) {
	if p.Exists(ref) {
		return ref, nil
	}
	parts := strings.SplitN(ref, "/", 2)
	if len(parts) == 2 {
		for _, ext := range []string{".jsonl", ".json"} {
			candidate := fs.Join(cfg.ProjectsRoot, parts[0], parts[1]+ext)
			if p.Exists(candidate) {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("session not found: %s", ref)
}
