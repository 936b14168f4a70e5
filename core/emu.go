package core

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/ringy/backend"
)

// ErrFault reports that a compiled function touched memory outside its frame
// or otherwise could not continue.
var ErrFault = errors.New("runtime fault")

type coreState struct {
	Code   *Program
	PC     int
	Values []int64
	Frame  []byte
	Steps  uint64
	Halted bool
	Err    error
}

func newCoreState(prog *Program) coreState {
	return coreState{
		Code:   prog,
		Values: make([]int64, prog.NumValues),
		Frame:  make([]byte, prog.StackSize),
	}
}

type instEmulator struct {
	output io.Writer
}

// RunInst executes one instruction and advances the PC.
func (i instEmulator) RunInst(inst Inst, state *coreState) error {
	state.Steps++

	switch inst.OpCode {
	case OpAlloca:
		a := state.Code.Allocs[inst.Imm]
		state.Values[inst.Dst] = int64(StackBase + a.Offset)
	case OpConst:
		state.Values[inst.Dst] = inst.Imm
	case OpAdd:
		state.Values[inst.Dst] = state.Values[inst.Src[0]] + state.Values[inst.Src[1]]
	case OpSub:
		state.Values[inst.Dst] = state.Values[inst.Src[0]] - state.Values[inst.Src[1]]
	case OpMov:
		state.Values[inst.Dst] = state.Values[inst.Src[0]]
	case OpLoadB:
		return i.runLoadB(inst, state)
	case OpStoreB:
		return i.runStoreB(inst, state)
	case OpIsZero:
		state.Values[inst.Dst] = 0
		if state.Values[inst.Src[0]] == 0 {
			state.Values[inst.Dst] = 1
		}
	case OpJmp:
		i.jump(inst.Target, state)
		return nil
	case OpJnz:
		if state.Values[inst.Src[0]] != 0 {
			i.jump(inst.Target, state)
			return nil
		}
	case OpJz:
		if state.Values[inst.Src[0]] == 0 {
			i.jump(inst.Target, state)
			return nil
		}
	case OpCall:
		return i.runCall(inst, state)
	case OpRet:
		state.Halted = true
		return nil
	default:
		return fmt.Errorf("%w: unknown instruction '%s' at PC %d",
			ErrFault, inst.OpCode, state.PC)
	}

	state.PC++

	return nil
}

func (i instEmulator) jump(l backend.Label, state *coreState) {
	state.PC = state.Code.Labels[l]
}

func (i instEmulator) frameOffset(addr int64, state *coreState) (int, error) {
	offset := addr - StackBase
	if offset < 0 || offset >= int64(len(state.Frame)) {
		return 0, fmt.Errorf("%w: address %#x outside the frame at PC %d",
			ErrFault, addr, state.PC)
	}

	return int(offset), nil
}

func (i instEmulator) runLoadB(inst Inst, state *coreState) error {
	offset, err := i.frameOffset(state.Values[inst.Src[0]]+inst.Imm, state)
	if err != nil {
		return err
	}

	state.Values[inst.Dst] = int64(state.Frame[offset])
	state.PC++

	return nil
}

func (i instEmulator) runStoreB(inst Inst, state *coreState) error {
	offset, err := i.frameOffset(state.Values[inst.Src[0]]+inst.Imm, state)
	if err != nil {
		return err
	}

	state.Frame[offset] = byte(state.Values[inst.Src[1]])
	state.PC++

	return nil
}

func (i instEmulator) runCall(inst Inst, state *coreState) error {
	arg := state.Values[inst.Src[0]]

	var err error

	switch fn := backend.Extern(inst.Imm); fn {
	case backend.PutChar:
		_, err = i.output.Write([]byte{byte(arg)})
	case backend.InsertZero:
		err = i.insertZero(arg, state)
	default:
		err = fmt.Errorf("%w: call to unknown %s at PC %d", ErrFault, fn.Name(), state.PC)
	}

	if err != nil {
		return err
	}

	state.PC++

	return nil
}

// insertZero puts a zero at addr and moves the rest of the enclosing buffer
// one byte up. The last byte of the buffer is lost.
func (i instEmulator) insertZero(addr int64, state *coreState) error {
	offset, err := i.frameOffset(addr, state)
	if err != nil {
		return err
	}

	a, ok := state.Code.allocAt(offset)
	if !ok {
		return fmt.Errorf("%w: address %#x is not inside a stack buffer at PC %d",
			ErrFault, addr, state.PC)
	}

	end := a.Offset + a.Size
	copy(state.Frame[offset+1:end], state.Frame[offset:end-1])
	state.Frame[offset] = 0

	return nil
}
