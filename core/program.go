package core

import "github.com/sarchlab/ringy/backend"

// StackBase is the address of the first byte of every activation frame.
const StackBase = 0x1000

// Program is a compiled function.
type Program struct {
	Name  string
	Insts []Inst

	// Labels maps a label to the index of the instruction it marks, or -1 if
	// the label was never defined. A label may mark len(Insts).
	Labels []int

	NumValues int
	Allocs    []StackAlloc
	StackSize int
}

// StackAlloc is a buffer reserved in the activation frame.
type StackAlloc struct {
	Offset int
	Size   int
}

// LabelIndex groups the defined labels by the instruction they mark.
func (p *Program) LabelIndex() map[int][]backend.Label {
	index := make(map[int][]backend.Label)

	for l, at := range p.Labels {
		if at >= 0 {
			index[at] = append(index[at], backend.Label(l))
		}
	}

	return index
}

// allocAt returns the stack buffer that contains the frame offset.
func (p *Program) allocAt(offset int) (StackAlloc, bool) {
	for _, a := range p.Allocs {
		if offset >= a.Offset && offset < a.Offset+a.Size {
			return a, true
		}
	}

	return StackAlloc{}, false
}
