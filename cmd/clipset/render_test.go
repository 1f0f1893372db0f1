package main

import (
	"strings"
	"testing"
)

func TestRenderTablePadsRowsAndFooter(t *testing.T) {
	out := tableSpec{
		Headers: []string{"Row", "Identifier", "Status"},
		Rows:    [][]string{{"0", "abc"}, {"1", "def", "fetched"}},
		Aligns:  []columnAlignment{alignRight},
		Footer:  []string{"", "total", "2"},
	}.render()

	for _, want := range []string{"ROW", "IDENTIFIER", "abc", "fetched", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected table to contain %q:\n%s", want, out)
		}
	}
	if renderTable(nil, [][]string{{"x"}}, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}

func TestRenderStatusLine(t *testing.T) {
	plain := renderStatusLine("FFmpeg", statusOK, "Ready", false)
	if !strings.Contains(plain, "FFmpeg:") || !strings.HasSuffix(plain, "[OK] Ready") {
		t.Fatalf("unexpected line %q", plain)
	}
	colored := renderStatusLine("FFmpeg", statusError, "", true)
	if !strings.HasPrefix(colored, "  FFmpeg:") || !strings.HasSuffix(colored, ansiRed+"[ERROR]"+ansiReset) {
		t.Fatalf("unexpected coloured line %q", colored)
	}
}
