package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderIndexedTable draws one row per list entry with a right-aligned
// index column in front, matching the indexes the update/remove commands take.
func renderIndexedTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := table.Row{"#"}
	for _, h := range headers {
		header = append(header, h)
	}
	tw.AppendHeader(header)

	for i, row := range rows {
		r := make(table.Row, len(headers)+1)
		r[0] = i
		for col := range headers {
			if col < len(row) {
				r[col+1] = row[col]
			} else {
				r[col+1] = ""
			}
		}
		tw.AppendRow(r)
	}

	tw.SetColumnConfigs([]table.ColumnConfig{{
		Number:      1,
		Align:       text.AlignRight,
		AlignHeader: text.AlignRight,
	}})
	return tw.Render()
}
