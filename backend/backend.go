// Package backend defines the narrow code-generation contract the translator
// emits into. A backend hands out labels and values, records operations in
// emission order, and finally compiles them into a callable function.
package backend

import "fmt"

// Label is a branch target handed out by a Builder. A label can be branched to
// before it is defined.
type Label int

// Value is a virtual register holding an integer or an address.
type Value int

// Extern identifies a host routine that compiled code can call with a single
// argument.
type Extern int

const (
	// PutChar writes the low byte of its argument to the output.
	PutChar Extern = iota
	// InsertZero inserts a zero byte at the address given by its argument and
	// shifts the remainder of the enclosing stack buffer one byte toward its
	// end, dropping the last byte.
	InsertZero
)

// Name returns the name of the extern.
func (e Extern) Name() string {
	switch e {
	case PutChar:
		return "putchar"
	case InsertZero:
		return "insert_zero"
	default:
		return fmt.Sprintf("extern(%d)", int(e))
	}
}

// Builder emits operations for a single function that takes no arguments and
// returns nothing.
type Builder interface {
	// NewLabel allocates a label that is not bound to any emission point yet.
	NewLabel() Label

	// DefineLabel binds the label to the current emission point.
	DefineLabel(l Label)

	// AllocStack reserves a fixed-size buffer in the activation frame and
	// returns its address.
	AllocStack(size int) Value

	// NewVar creates a local variable that can be the target of Assign.
	NewVar() Value

	// Const materializes an integer constant.
	Const(v int64) Value

	// Add and Sub perform integer arithmetic. Adding a byte offset to an
	// address yields an address.
	Add(a, b Value) Value
	Sub(a, b Value) Value

	// Assign copies src into dst.
	Assign(dst, src Value)

	// LoadByte reads the byte at addr+offset.
	LoadByte(addr Value, offset int) Value

	// StoreByte writes the low byte of v to addr+offset.
	StoreByte(addr Value, offset int, v Value)

	// IsZero yields 1 if v equals zero, otherwise 0.
	IsZero(v Value) Value

	// Branch jumps to l unconditionally.
	Branch(l Label)

	// BranchIf jumps to l when cond is non-zero.
	BranchIf(cond Value, l Label)

	// BranchIfNot jumps to l when cond is zero.
	BranchIfNot(cond Value, l Label)

	// Call invokes a host routine with a single argument.
	Call(fn Extern, arg Value)

	// Return leaves the function immediately.
	Return()

	// Compile finalizes the emitted operations. No operation may be emitted
	// after Compile.
	Compile() (Function, error)
}

// Function is a compiled entry point with no arguments and no return value.
type Function interface {
	// Invoke runs the function to completion. The returned error reports a
	// fault raised while executing, not a return value.
	Invoke() error
}
