package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hupe1980/salescube/codec"
)

// configureTable creates a table writer with the CLI's styling.
func configureTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetAutoIndex(false)
	t.Style().Options.SeparateRows = false
	return t
}

// renderRows prints a header and rows, truncating the middle when more
// than rowLimit rows are given.
func renderRows(w io.Writer, header []string, rows [][]any, rowLimit int) {
	t := configureTable(w)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	if rowLimit <= 0 || len(rows) <= rowLimit {
		for _, r := range rows {
			t.AppendRow(table.Row(r))
		}
		t.Render()
		return
	}

	top := rowLimit / 2
	bottom := rowLimit - top
	for _, r := range rows[:top] {
		t.AppendRow(table.Row(r))
	}

	message := fmt.Sprintf("... (%d more rows) ...", len(rows)-rowLimit)
	truncation := make(table.Row, len(header))
	for i := range truncation {
		truncation[i] = message
	}
	t.AppendRow(truncation, table.RowConfig{AutoMerge: true})

	for _, r := range rows[len(rows)-bottom:] {
		t.AppendRow(table.Row(r))
	}
	t.Render()
}

// writeJSON encodes v with the default codec followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := codec.Default.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

var stdout io.Writer = os.Stdout
