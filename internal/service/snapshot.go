package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const maxTitleLen = 200

// logSnapshot records the size and title of a page snapshot at debug level.
// The snapshot is only tokenized when debug logging is on.
func logSnapshot(ctx context.Context, log *slog.Logger, doc string) {
	if doc == "" || !log.Enabled(ctx, slog.LevelDebug) {
		return
	}
	log.DebugContext(ctx, "page snapshot received", "bytes", len(doc), "title", snapshotTitle(doc))
}

// snapshotTitle returns the <title> of an HTML page snapshot, or "".
// The snapshot is otherwise unused.
func snapshotTitle(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			inTitle = string(name) == "title"
		case html.EndTagToken:
			inTitle = false
		case html.TextToken:
			if inTitle {
				t := strings.TrimSpace(string(z.Text()))
				return truncate(t, maxTitleLen)
			}
		}
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
