package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"performersync/internal/pipeline"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// maxChangeRows bounds the change table printed after a run.
const maxChangeRows = 50

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func statusLine(report *pipeline.Report, colorize bool) string {
	line := fmt.Sprintf("Run %s (%s): %s in %s", report.RunID, report.Command, report.Status, report.Duration().Round(time.Millisecond))
	if report.DryRun {
		line += " [dry run, no changes were made]"
	}
	if !colorize {
		return line
	}
	color := ansiGreen
	switch {
	case report.Status != pipeline.StatusOK:
		color = ansiRed
	case report.Counters.Errors > 0 || report.Counters.MergeFailures > 0:
		color = ansiYellow
	}
	return color + line + ansiReset
}

func renderSummary(report *pipeline.Report, colorize bool) string {
	c := report.Counters
	rows := [][]string{
		{"Performers", strconv.Itoa(c.Performers)},
		{"Eligible", strconv.Itoa(c.Eligible)},
		{"Updated", strconv.Itoa(c.Updated)},
		{"Fallback renames", strconv.Itoa(c.Fallback)},
		{"Skipped (multiple links)", strconv.Itoa(c.SkippedMultiID)},
		{"Skipped (no alias)", strconv.Itoa(c.SkippedNoAlias)},
		{"Skipped (no change)", strconv.Itoa(c.SkippedNoChange)},
		{"Skipped (not linked)", strconv.Itoa(c.SkippedNotLinked)},
		{"Errors", strconv.Itoa(c.Errors)},
		{"Duplicate groups", strconv.Itoa(c.MergeGroups)},
		{"Merged", strconv.Itoa(c.Merged)},
		{"Merge failures", strconv.Itoa(c.MergeFailures)},
		{"Associations moved", strconv.Itoa(c.AssociationsMoved)},
	}
	var b strings.Builder
	b.WriteString(statusLine(report, colorize))
	b.WriteString("\n")
	if report.Native != "" {
		fmt.Fprintf(&b, "Native registry: %s\n", report.Native)
	}
	if report.Canonical != "" {
		fmt.Fprintf(&b, "Canonical registry: %s\n", report.Canonical)
	}
	b.WriteString(renderTable([]column{{header: "Counter"}, {header: "Value", numeric: true}}, rows, "", colorize))
	b.WriteString("\n")
	if changes := renderChanges(report.Events, colorize); changes != "" {
		b.WriteString(changes)
		b.WriteString("\n")
	}
	return b.String()
}

func renderChanges(events []pipeline.Event, colorize bool) string {
	var rows [][]string
	hidden := 0
	for _, e := range events {
		if e.Kind != pipeline.EventUpdate && e.Kind != pipeline.EventMerge && e.Kind != pipeline.EventError {
			continue
		}
		if len(rows) == maxChangeRows {
			hidden++
			continue
		}
		detail := e.Message
		switch e.Kind {
		case pipeline.EventUpdate:
			if len(e.Related) > 0 {
				detail = fmt.Sprintf("from %q (%s)", e.Related[0], e.Message)
			}
			if len(e.Fields) > 0 {
				detail += " fields: " + strings.Join(e.Fields, ",")
			}
		case pipeline.EventMerge:
			detail = fmt.Sprintf("%s absorbed %s", e.Message, strings.Join(e.Related, ","))
		}
		rows = append(rows, []string{string(e.Stage), string(e.Kind), e.PerformerID, e.Name, detail})
	}
	if len(rows) == 0 {
		return ""
	}
	caption := ""
	if hidden > 0 {
		caption = fmt.Sprintf("... %d more", hidden)
	}
	return renderTable(textColumns("Stage", "Kind", "ID", "Name", "Detail"), rows, caption, colorize)
}
