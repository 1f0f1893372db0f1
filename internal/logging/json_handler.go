package logging

import (
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// newJSONHandler emits one object per line with "ts", lowercase "level",
// "msg" and a short "source" so records match jq filters like
// 'select(.level=="warn" and .stage=="extract")'.
func newJSONHandler(w io.Writer, level *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		AddSource:   addSource,
		ReplaceAttr: renameBuiltins,
	})
}

func renameBuiltins(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return attr
	}
	switch attr.Key {
	case slog.TimeKey:
		return slog.String("ts", attr.Value.Time().UTC().Format(time.RFC3339Nano))
	case slog.LevelKey:
		if lvl, ok := attr.Value.Any().(slog.Level); ok {
			return slog.String(slog.LevelKey, strings.ToLower(levelLabel(lvl)))
		}
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			return slog.String(slog.SourceKey, filepath.Base(src.File)+":"+strconv.Itoa(src.Line))
		}
	}
	return attr
}
