package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kunalbabre/claude-devtools/internal/config"
	"github.com/kunalbabre/claude-devtools/internal/fs"
	"github.com/kunalbabre/claude-devtools/internal/model"
	"github.com/kunalbabre/claude-devtools/internal/parse"
	"github.com/kunalbabre/claude-devtools/internal/sanitize"
)

func messagesCmd() *cobra.Command {
	var asJSON bool
	var kind string

	cmd := &cobra.Command{
		Use:   "messages <session>",
		Short: "Dump a session's normalized messages",
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

			for i := range messages {
				m := &messages[i]
				if kind != "" && string(m.Kind) != kind {
					continue
				}
				if asJSON {
					if err := printMessageJSON(m); err != nil {
						return err
					}
					continue
				}
				printMessage(m)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit one JSON object per message")
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by message kind (user/assistant/system/...)")

	return cmd
}

func printMessage(m *model.Message) {
	ts := ""
	if !m.Timestamp.IsZero() {
		ts = m.Timestamp.Format("2006-01-02 15:04:05")
	}
	text := sanitize.Clean(strings.ReplaceAll(m.PlainText(), "\n", " "))
	if len(text) > 160 {
		text = text[:160] + "..."
	}
	extra := ""
	if len(m.ToolCalls) > 0 {
		names := make([]string, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			names[i] = tc.Name
		}
		extra = " tools=" + strings.Join(names, ",")
	}
	fmt.Printf("%s  %-10s %s%s\n", ts, m.Kind, text, extra)
}

func printMessageJSON(m *model.Message) error {
	type wire struct {
		ID        string            `json:"id"`
		ParentID  string            `json:"parent_id,omitempty"`
		Kind      model.Kind        `json:"kind"`
		Timestamp string            `json:"timestamp,omitempty"`
		Role      string            `json:"role,omitempty"`
		Text      string            `json:"text,omitempty"`
		Model     string            `json:"model,omitempty"`
		Usage     *model.TokenUsage `json:"usage,omitempty"`
		Sidechain bool              `json:"sidechain,omitempty"`
	}
	w := wire{
		ID:        m.ID,
		ParentID:  m.ParentID,
		Kind:      m.Kind,
		Role:      m.Role,
		Text:      m.PlainText(),
		Model:     m.Model,
		Usage:     m.Usage,
		Sidechain: m.IsSidechain,
	}
	if !m.Timestamp.IsZero() {
		w.Timestamp = m.Timestamp.Format("2006-01-02T15:04:05Z07:00")
	}
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(w)
}
