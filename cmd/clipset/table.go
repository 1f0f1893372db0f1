package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableSpec describes a rendered table. Rows shorter than Headers are padded.
type tableSpec struct {
	Headers []string
	Rows    [][]string
	Aligns  []columnAlignment
	Footer  []string
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	return tableSpec{Headers: headers, Rows: rows, Aligns: aligns}.render()
}

func (s tableSpec) render() string {
	columns := len(s.Headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(padRow(s.Headers, columns))
	for _, row := range s.Rows {
		tw.AppendRow(padRow(row, columns))
	}
	if len(s.Footer) > 0 {
		tw.AppendFooter(padRow(s.Footer, columns))
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(s.Aligns) && s.Aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:           i + 1,
			Align:            align,
			AlignHeader:      text.AlignLeft,
			AlignFooter:      align,
			WidthMax:         60,
			WidthMaxEnforcer: text.Trim,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func padRow(values []string, columns int) table.Row {
	row := make(table.Row, columns)
	for i := range columns {
		if i < len(values) {
			row[i] = values[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
