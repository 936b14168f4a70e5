package core

import (
	"fmt"
	"strings"

	"github.com/sarchlab/ringy/backend"
)

// Opcode represents the operation code for an instruction
type Opcode string

// Opcodes understood by the emulator.
const (
	OpAlloca Opcode = "ALLOCA" // Dst = address of stack buffer Imm
	OpConst  Opcode = "CONST"  // Dst = Imm
	OpAdd    Opcode = "ADD"    // Dst = Src0 + Src1
	OpSub    Opcode = "SUB"    // Dst = Src0 - Src1
	OpMov    Opcode = "MOV"    // Dst = Src0
	OpLoadB  Opcode = "LOADB"  // Dst = byte at Src0 + Imm
	OpStoreB Opcode = "STOREB" // byte at Src0 + Imm = low byte of Src1
	OpIsZero Opcode = "ISZERO" // Dst = Src0 == 0
	OpJmp    Opcode = "JMP"
	OpJnz    Opcode = "JNZ" // jump when Src0 != 0
	OpJz     Opcode = "JZ"  // jump when Src0 == 0
	OpCall   Opcode = "CALL"
	OpRet    Opcode = "RET"
)

// Inst is a single emulated instruction.
type Inst struct {
	OpCode Opcode
	Dst    backend.Value
	Src    []backend.Value
	Imm    int64
	Target backend.Label
}

// IsJump reports whether the instruction transfers control to Target.
func (i Inst) IsJump() bool {
	switch i.OpCode {
	case OpJmp, OpJnz, OpJz:
		return true
	}

	return false
}

func (i Inst) String() string {
	srcs := make([]string, len(i.Src))
	for k, s := range i.Src {
		srcs[k] = reg(s)
	}

	switch i.OpCode {
	case OpAlloca:
		return fmt.Sprintf("%s = ALLOCA #%d", reg(i.Dst), i.Imm)
	case OpConst:
		return fmt.Sprintf("%s = CONST %d", reg(i.Dst), i.Imm)
	case OpAdd, OpSub, OpMov, OpIsZero:
		return fmt.Sprintf("%s = %s %s", reg(i.Dst), i.OpCode, strings.Join(srcs, ", "))
	case OpLoadB:
		return fmt.Sprintf("%s = LOADB [%s%+d]", reg(i.Dst), srcs[0], i.Imm)
	case OpStoreB:
		return fmt.Sprintf("STOREB [%s%+d], %s", srcs[0], i.Imm, srcs[1])
	case OpJmp:
		return fmt.Sprintf("JMP L%d", i.Target)
	case OpJnz, OpJz:
		return fmt.Sprintf("%s %s, L%d", i.OpCode, srcs[0], i.Target)
	case OpCall:
		return fmt.Sprintf("CALL %s(%s)", backend.Extern(i.Imm).Name(), srcs[0])
	default:
		return string(i.OpCode)
	}
}

func reg(v backend.Value) string {
	return fmt.Sprintf("$%d", int(v))
}
