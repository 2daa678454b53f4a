package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/koriwi/rocksonic/internal/download"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8DADC"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
)

// reportPrinter writes progress events, one per line.
type reportPrinter struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
	verbose  bool
}

func newReportPrinter(out io.Writer, colorize, verbose bool) *reportPrinter {
	return &reportPrinter{out: out, colorize: colorize, verbose: verbose}
}

func (p *reportPrinter) print(event download.ProgressEvent) {
	if event.Level == download.LevelVerbose && !p.verbose {
		return
	}

	line := event.Message
	if p.colorize {
		line = styleFor(event.Level).Render(line)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}

func styleFor(level download.ProgressLevel) lipgloss.Style {
	switch level {
	case download.LevelError:
		return errorStyle
	case download.LevelWarning:
		return warningStyle
	case download.LevelSuccess:
		return successStyle
	case download.LevelInfo:
		return infoStyle
	default:
		return dimStyle
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// renderSummary renders the counts of a finished session.
func renderSummary(result *download.Result) string {
	s := result.Summary
	rows := [][]string{
		{"Library", result.Library},
		{"Tracks", strconv.Itoa(s.Total)},
		{"Downloaded", strconv.Itoa(s.Downloaded)},
		{"Covers fetched", strconv.Itoa(s.Covers)},
		{"Converted", strconv.Itoa(s.Converted)},
		{"Covers embedded", strconv.Itoa(s.Embedded)},
		{"Up to date", strconv.Itoa(s.Skipped)},
		{"Failed", strconv.Itoa(s.Failed)},
	}
	if result.PlaylistPath != "" {
		rows = append(rows, []string{"Playlist", result.PlaylistPath})
	}
	return renderTable([]string{"Sync", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
}
