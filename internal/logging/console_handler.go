package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes one human-readable line per record:
//
//	2026-01-02T15:04:05Z INFO extract#3: extracted artifacts image=/data/3.png
//
// The component and item index move into the prefix; every other attribute
// follows the message as key=value.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     *slog.LevelVar
	attrs     []field
	groups    []string
	addSource bool
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, level *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]field, 0, len(h.attrs)+record.NumAttrs())
	fields = append(fields, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendField(fields, h.groups, attr)
		return true
	})

	var component, index string
	rest := fields[:0]
	for _, f := range fields {
		switch {
		case f.key == FieldComponent && component == "":
			component = plainValue(f.value)
		case f.key == FieldItemIndex && index == "":
			index = plainValue(f.value)
		default:
			rest = append(rest, f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var buf bytes.Buffer
	buf.WriteString(ts.UTC().Format(time.RFC3339))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	buf.WriteByte(' ')
	if component != "" || index != "" {
		buf.WriteString(component)
		if index != "" {
			buf.WriteByte('#')
			buf.WriteString(index)
		}
		buf.WriteString(": ")
	}
	if msg := strings.TrimSpace(record.Message); msg != "" {
		buf.WriteString(msg)
	} else {
		buf.WriteString("(no message)")
	}
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			fmt.Fprintf(&buf, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	for _, f := range rest {
		if f.key == "" {
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(f.key)
		buf.WriteByte('=')
		buf.WriteString(quoted(plainValue(f.value)))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]field(nil), h.attrs...)
	for _, attr := range attrs {
		clone.attrs = appendField(clone.attrs, h.groups, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// appendField flattens groups into dotted keys.
func appendField(dst []field, groups []string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			groups = append(append([]string(nil), groups...), attr.Key)
		}
		for _, member := range value.Group() {
			dst = appendField(dst, groups, member)
		}
		return dst
	}
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(append(append([]string(nil), groups...), key), ".")
	}
	return append(dst, field{key: key, value: value})
}

func plainValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

// quoted wraps values that would break key=value parsing.
func quoted(s string) string {
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
