// Package verify provides debugging tools for compiled tape programs.
//
// It implements two complementary views of a core.Program.
//
// Static lint (lint.go) runs structural checks without executing the
// program:
//   - STRUCT: jumps to labels that are never defined, calls to unknown host
//     routines
//   - UNREACHABLE: instructions that follow a return or an unconditional jump
//     and that no jump can reach
//
// The report (report.go) is a listing of the program with its labels plus the
// lint issues, rendered as tables.
//
// # Usage Example
//
//	runner := api.RunnerBuilder{}.Build("Runner")
//	if err := runner.Compile(src); err != nil {
//	    ...
//	}
//
//	report := verify.GenerateReport(runner.Program())
//	report.WriteReport(os.Stderr)
package verify

import "github.com/sarchlab/ringy/backend"

// IssueType categorizes lint issues
type IssueType string

const (
	IssueStruct      IssueType = "STRUCT"      // Malformed program (undefined label, unknown extern)
	IssueUnreachable IssueType = "UNREACHABLE" // Code that can never execute
)

// Issue represents a single lint issue
type Issue struct {
	Type    IssueType
	PC      int           // Instruction index or -1
	Label   backend.Label // Label involved or -1
	Message string
}
