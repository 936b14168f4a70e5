package verify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/ringy/core"
)

// Report bundles a program with its lint results.
type Report struct {
	Program *core.Program
	Issues  []Issue
}

// GenerateReport lints the program and returns a report.
func GenerateReport(prog *core.Program) *Report {
	return &Report{
		Program: prog,
		Issues:  RunLint(prog),
	}
}

// OK reports whether the lint found no STRUCT issues.
func (r *Report) OK() bool {
	for _, issue := range r.Issues {
		if issue.Type == IssueStruct {
			return false
		}
	}

	return true
}

// Listing renders the instructions with the labels that mark them.
func Listing(prog *core.Program) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s (%d insts, %d labels, %d-byte frame)",
		prog.Name, len(prog.Insts), len(prog.Labels), prog.StackSize))
	t.AppendHeader(table.Row{"PC", "Labels", "Instruction"})

	index := prog.LabelIndex()
	for pc := 0; pc <= len(prog.Insts); pc++ {
		inst := "(end)"
		if pc < len(prog.Insts) {
			inst = prog.Insts[pc].String()
		} else if len(index[pc]) == 0 {
			continue
		}

		names := make([]string, 0, len(index[pc]))
		for _, l := range index[pc] {
			names = append(names, fmt.Sprintf("L%d", l))
		}

		t.AppendRow(table.Row{pc, strings.Join(names, " "), inst})
	}

	return t.Render()
}

// WriteReport writes the listing and the lint issues to w.
func (r *Report) WriteReport(w io.Writer) {
	fmt.Fprintln(w, Listing(r.Program))
	fmt.Fprintln(w)

	if len(r.Issues) == 0 {
		fmt.Fprintln(w, "No lint issues found.")
		return
	}

	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Lint issues (%d)", len(r.Issues)))
	t.AppendHeader(table.Row{"Type", "PC", "Message"})

	for _, issue := range r.Issues {
		t.AppendRow(table.Row{issue.Type, issue.PC, issue.Message})
	}

	fmt.Fprintln(w, t.Render())
}

// SaveReportToFile saves the report to a file
func (r *Report) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)

	return nil
}
