// Package sanitize strips presentation-only markup from session text before
// it is displayed or indexed. Clean is idempotent: sanitizing already-clean
// text returns it unchanged.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	ansiRe    = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)
	tagPairRe = regexp.MustCompile(`(?s)<(command-message|command-args|local-command-stdout|local-command-stderr|system-reminder)>(.*?)</[a-z-]+>`)
	cmdNameRe = regexp.MustCompile(`<command-name>([^<]*)</command-name>`)
	bareTagRe = regexp.MustCompile(`</?(command-name|command-message|command-args|local-command-stdout|local-command-stderr|system-reminder)>`)
	multiWS   = regexp.MustCompile(`[ \t]{2,}`)
)

// Clean strips ANSI escapes and session markup tags. Command-name tags keep
// their label (it is the user-visible slash command); other tag pairs are
// removed with their contents.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	out := ansiRe.ReplaceAllString(text, "")
	out = cmdNameRe.ReplaceAllString(out, "$1")
	out = tagPairRe.ReplaceAllString(out, "")
	out = bareTagRe.ReplaceAllString(out, "")
	out = multiWS.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// CommandLabel extracts the slash-command label from command-name markup,
// or "" if the text carries none.
func CommandLabel(text string) string {
	m := cmdNameRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
