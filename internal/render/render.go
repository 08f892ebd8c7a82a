// Package render formats patches into the line-oriented report layout.
package render

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"time"

	"dirpatch/internal/reconcile"
	"dirpatch/internal/record"
)

// HeaderTimeLayout formats the run timestamp in the report header.
const HeaderTimeLayout = time.RFC3339

type Line struct {
	Operation reconcile.Operation
	Record    record.FileRecord
}

func (l Line) String() string {
	return fmt.Sprintf("%s %s", l.Operation.Symbol(), l.Record)
}

// Lines flattens a patch into lines sorted by path using byte-wise
// comparison. Unchanged entries are dropped when suppressUnchanged is set.
func Lines(patch reconcile.PatchResult, suppressUnchanged bool) []Line {
	lines := make([]Line, 0)
	for _, op := range reconcile.Operations() {
		if op == reconcile.Unchanged && suppressUnchanged {
			continue
		}
		for _, r := range patch[op] {
			lines = append(lines, Line{Operation: op, Record: r})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Record.Path < lines[j].Record.Path
	})
	return lines
}

// Render returns label followed by one line per patch entry.
func Render(label string, patch reconcile.PatchResult, suppressUnchanged bool) []string {
	lines := Lines(patch, suppressUnchanged)

	out := make([]string, 0, len(lines)+1)
	out = append(out, label)
	for _, l := range lines {
		out = append(out, l.String())
	}
	return out
}

type Header struct {
	Generated time.Time
	RootA     string
	RootB     string
}

func (h Header) Lines() []string {
	return []string{
		fmt.Sprintf("# Results for %s", h.Generated.Format(HeaderTimeLayout)),
		fmt.Sprintf("# Reconciled '%s' '%s'", h.RootA, h.RootB),
	}
}

// WriteReport writes the header, then each rendered section followed by a
// blank line.
func WriteReport(w io.Writer, header Header, sections ...[]string) error {
	bw := bufio.NewWriter(w)

	for _, line := range header.Lines() {
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for _, section := range sections {
		for _, line := range section {
			if _, err := fmt.Fprintln(bw, line); err != nil {
				return fmt.Errorf("failed to write section: %w", err)
			}
		}
		if _, err := fmt.Fprintln(bw); err != nil {
			return fmt.Errorf("failed to write section: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}
