// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"sfkit/cli/internal/table"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

var spinnerFrames = []string{"-", "\\", "|", "/"}

// startInlineSpinner draws frames followed by text on one line until the returned
// function is called, which clears the line.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
			select {
			case <-stop:
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s", line)
				i++
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
		})
	}
}

// renderTable renders tb with rounded borders; numeric columns are right aligned.
// At most limit rows are shown when limit is positive.
func renderTable(tb *table.Table, limit int) string {
	columns := len(tb.Columns)
	if columns == 0 {
		return ""
	}

	tw := prettytable.NewWriter()
	tw.SetStyle(prettytable.StyleRounded)

	header := make(prettytable.Row, columns)
	for i, c := range tb.Columns {
		header[i] = c
	}
	tw.AppendHeader(header)

	for n, row := range tb.Rows {
		if limit > 0 && n >= limit {
			break
		}
		r := make(prettytable.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) && row[i] != nil {
				r[i] = table.StringValue(row[i])
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	kinds := tb.ColumnKinds()
	configs := make([]prettytable.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if kinds[i] == table.KindInt || kinds[i] == table.KindFloat {
			align = text.AlignRight
		}
		configs = append(configs, prettytable.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	if limit > 0 && tb.NumRows() > limit {
		tw.SetCaption("showing %d of %d rows", limit, tb.NumRows())
	}
	return tw.Render()
}
