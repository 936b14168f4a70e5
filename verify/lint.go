package verify

import (
	"fmt"

	"github.com/sarchlab/ringy/backend"
	"github.com/sarchlab/ringy/core"
)

// RunLint performs static checks on a compiled program and returns the issues
// found, in instruction order.
func RunLint(prog *core.Program) []Issue {
	var issues []Issue

	issues = append(issues, checkJumps(prog)...)
	issues = append(issues, checkCalls(prog)...)
	issues = append(issues, checkReachability(prog)...)

	return issues
}

func checkJumps(prog *core.Program) []Issue {
	var issues []Issue

	for pc, inst := range prog.Insts {
		if !inst.IsJump() {
			continue
		}

		if int(inst.Target) >= len(prog.Labels) || prog.Labels[inst.Target] < 0 {
			issues = append(issues, Issue{
				Type:    IssueStruct,
				PC:      pc,
				Label:   inst.Target,
				Message: fmt.Sprintf("jump to undefined label L%d", inst.Target),
			})
		}
	}

	return issues
}

func checkCalls(prog *core.Program) []Issue {
	var issues []Issue

	for pc, inst := range prog.Insts {
		if inst.OpCode != core.OpCall {
			continue
		}

		fn := backend.Extern(inst.Imm)
		if fn != backend.PutChar && fn != backend.InsertZero {
			issues = append(issues, Issue{
				Type:    IssueStruct,
				PC:      pc,
				Label:   -1,
				Message: fmt.Sprintf("call to unknown %s", fn.Name()),
			})
		}
	}

	return issues
}

// checkReachability reports runs of instructions after a RET or JMP that do
// not start at a jump target. Labels nobody jumps to do not make code
// reachable.
func checkReachability(prog *core.Program) []Issue {
	targets := make(map[int]bool)

	for _, inst := range prog.Insts {
		if inst.IsJump() && int(inst.Target) < len(prog.Labels) {
			targets[prog.Labels[inst.Target]] = true
		}
	}

	var issues []Issue

	dead := false
	start := 0

	flush := func(end int) {
		if dead && end > start {
			issues = append(issues, Issue{
				Type:    IssueUnreachable,
				PC:      start,
				Label:   -1,
				Message: fmt.Sprintf("instructions %d..%d can never execute", start, end-1),
			})
		}
	}

	for pc, inst := range prog.Insts {
		if targets[pc] {
			flush(pc)
			dead = false
		}

		if !dead && (inst.OpCode == core.OpRet || inst.OpCode == core.OpJmp) {
			dead = true
			start = pc + 1
		}
	}

	flush(len(prog.Insts))

	return issues
}
