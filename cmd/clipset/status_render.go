package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var statusTags = [...]struct{ text, color string }{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

// renderStatusLine formats "  Label:     [TAG] message". Only the tag is
// coloured so labels stay aligned when copied out of a terminal.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	tag := statusTags[statusInfo]
	if int(kind) >= 0 && int(kind) < len(statusTags) {
		tag = statusTags[kind]
	}
	line := fmt.Sprintf("  %-20s %s", label+":", paint("["+tag.text+"]", tag.color, colorize))
	if message = strings.TrimSpace(message); message != "" {
		line += " " + message
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	title = strings.TrimSpace(title)
	return []string{paint(title, ansiBold, colorize), strings.Repeat("-", len(title))}
}

func paint(value, color string, colorize bool) string {
	if !colorize || color == "" {
		return value
	}
	return color + value + ansiReset
}

// shouldColorize honours NO_COLOR and only colours real terminals.
func shouldColorize(w io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
