package core

import (
	"fmt"

	"github.com/sarchlab/ringy/backend"
)

// FunctionBuilder records the operations of one function. It implements
// backend.Builder.
type FunctionBuilder struct {
	core     *Core
	prog     *Program
	compiled bool
}

// NewFunction starts a new function that will run on the core.
func (c *Core) NewFunction() *FunctionBuilder {
	return &FunctionBuilder{
		core: c,
		prog: &Program{Name: fmt.Sprintf("%s.fn", c.Name())},
	}
}

func (b *FunctionBuilder) emit(inst Inst) {
	if b.compiled {
		panic("cannot emit into a compiled function")
	}

	b.prog.Insts = append(b.prog.Insts, inst)
}

func (b *FunctionBuilder) newValue() backend.Value {
	v := backend.Value(b.prog.NumValues)
	b.prog.NumValues++

	return v
}

// NewLabel allocates an undefined label.
func (b *FunctionBuilder) NewLabel() backend.Label {
	b.prog.Labels = append(b.prog.Labels, -1)
	return backend.Label(len(b.prog.Labels) - 1)
}

// DefineLabel binds l to the next emitted instruction.
func (b *FunctionBuilder) DefineLabel(l backend.Label) {
	b.mustBeLabel(l)

	if b.prog.Labels[l] >= 0 {
		panic(fmt.Sprintf("label L%d defined twice", l))
	}

	b.prog.Labels[l] = len(b.prog.Insts)
}

// AllocStack reserves size bytes in the frame.
func (b *FunctionBuilder) AllocStack(size int) backend.Value {
	if size <= 0 {
		panic("stack buffer size must be positive")
	}

	a := StackAlloc{Offset: b.prog.StackSize, Size: size}
	b.prog.Allocs = append(b.prog.Allocs, a)
	b.prog.StackSize += size

	dst := b.newValue()
	b.emit(Inst{OpCode: OpAlloca, Dst: dst, Imm: int64(len(b.prog.Allocs) - 1)})

	return dst
}

// NewVar creates a variable. Variables start at zero.
func (b *FunctionBuilder) NewVar() backend.Value {
	return b.newValue()
}

// Const materializes v.
func (b *FunctionBuilder) Const(v int64) backend.Value {
	dst := b.newValue()
	b.emit(Inst{OpCode: OpConst, Dst: dst, Imm: v})

	return dst
}

// Add emits dst = x + y.
func (b *FunctionBuilder) Add(x, y backend.Value) backend.Value {
	return b.binary(OpAdd, x, y)
}

// Sub emits dst = x - y.
func (b *FunctionBuilder) Sub(x, y backend.Value) backend.Value {
	return b.binary(OpSub, x, y)
}

func (b *FunctionBuilder) binary(op Opcode, x, y backend.Value) backend.Value {
	b.mustBeValue(x)
	b.mustBeValue(y)

	dst := b.newValue()
	b.emit(Inst{OpCode: op, Dst: dst, Src: []backend.Value{x, y}})

	return dst
}

// Assign emits dst = src.
func (b *FunctionBuilder) Assign(dst, src backend.Value) {
	b.mustBeValue(dst)
	b.mustBeValue(src)
	b.emit(Inst{OpCode: OpMov, Dst: dst, Src: []backend.Value{src}})
}

// LoadByte emits a byte load from addr+offset.
func (b *FunctionBuilder) LoadByte(addr backend.Value, offset int) backend.Value {
	b.mustBeValue(addr)

	dst := b.newValue()
	b.emit(Inst{OpCode: OpLoadB, Dst: dst, Src: []backend.Value{addr}, Imm: int64(offset)})

	return dst
}

// StoreByte emits a byte store to addr+offset.
func (b *FunctionBuilder) StoreByte(addr backend.Value, offset int, v backend.Value) {
	b.mustBeValue(addr)
	b.mustBeValue(v)
	b.emit(Inst{OpCode: OpStoreB, Src: []backend.Value{addr, v}, Imm: int64(offset)})
}

// IsZero emits dst = (v == 0).
func (b *FunctionBuilder) IsZero(v backend.Value) backend.Value {
	b.mustBeValue(v)

	dst := b.newValue()
	b.emit(Inst{OpCode: OpIsZero, Dst: dst, Src: []backend.Value{v}})

	return dst
}

// Branch emits an unconditional jump.
func (b *FunctionBuilder) Branch(l backend.Label) {
	b.mustBeLabel(l)
	b.emit(Inst{OpCode: OpJmp, Target: l})
}

// BranchIf emits a jump taken when cond is non-zero.
func (b *FunctionBuilder) BranchIf(cond backend.Value, l backend.Label) {
	b.mustBeValue(cond)
	b.mustBeLabel(l)
	b.emit(Inst{OpCode: OpJnz, Src: []backend.Value{cond}, Target: l})
}

// BranchIfNot emits a jump taken when cond is zero.
func (b *FunctionBuilder) BranchIfNot(cond backend.Value, l backend.Label) {
	b.mustBeValue(cond)
	b.mustBeLabel(l)
	b.emit(Inst{OpCode: OpJz, Src: []backend.Value{cond}, Target: l})
}

// Call emits a call to a host routine.
func (b *FunctionBuilder) Call(fn backend.Extern, arg backend.Value) {
	b.mustBeValue(arg)
	b.emit(Inst{OpCode: OpCall, Src: []backend.Value{arg}, Imm: int64(fn)})
}

// Return emits a return.
func (b *FunctionBuilder) Return() {
	b.emit(Inst{OpCode: OpRet})
}

// Program returns the instructions recorded so far.
func (b *FunctionBuilder) Program() *Program {
	return b.prog
}

// Compile checks that every jump names a defined label and every call names a
// known extern, then seals the function.
func (b *FunctionBuilder) Compile() (backend.Function, error) {
	if b.compiled {
		return nil, fmt.Errorf("function %s already compiled", b.prog.Name)
	}

	for pc, inst := range b.prog.Insts {
		if inst.IsJump() && b.prog.Labels[inst.Target] < 0 {
			return nil, fmt.Errorf(
				"instruction %d jumps to label L%d, which is never defined",
				pc, inst.Target)
		}

		if inst.OpCode == OpCall && !knownExtern(backend.Extern(inst.Imm)) {
			return nil, fmt.Errorf(
				"instruction %d calls unknown %s", pc, backend.Extern(inst.Imm).Name())
		}
	}

	b.compiled = true

	return &Function{core: b.core, prog: b.prog}, nil
}

func (b *FunctionBuilder) mustBeValue(v backend.Value) {
	if int(v) < 0 || int(v) >= b.prog.NumValues {
		panic(fmt.Sprintf("unknown value $%d", v))
	}
}

func (b *FunctionBuilder) mustBeLabel(l backend.Label) {
	if int(l) < 0 || int(l) >= len(b.prog.Labels) {
		panic(fmt.Sprintf("unknown label L%d", l))
	}
}

func knownExtern(fn backend.Extern) bool {
	return fn == backend.PutChar || fn == backend.InsertZero
}

// Function is a compiled program bound to the core that runs it.
type Function struct {
	core *Core
	prog *Program
}

// Program returns the compiled instructions.
func (f *Function) Program() *Program {
	return f.prog
}

// Invoke runs the function on a fresh activation frame.
func (f *Function) Invoke() error {
	return f.core.Execute(f.prog)
}
