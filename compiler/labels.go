package compiler

import (
	"fmt"

	"github.com/sarchlab/ringy/backend"
)

// LabelTable owns one backend label per source position. Every label is
// allocated up front so that forward branches can name a label before the
// code it marks exists.
type LabelTable struct {
	builder backend.Builder
	labels  []backend.Label
	defined []bool
}

// NewLabelTable allocates n unresolved labels from b.
func NewLabelTable(b backend.Builder, n int) *LabelTable {
	t := &LabelTable{
		builder: b,
		labels:  make([]backend.Label, n),
		defined: make([]bool, n),
	}

	for i := range t.labels {
		t.labels[i] = b.NewLabel()
	}

	return t
}

// Len returns the number of labels.
func (t *LabelTable) Len() int {
	return len(t.labels)
}

// Get returns the label of position i.
func (t *LabelTable) Get(i int) backend.Label {
	t.mustBeInRange(i)
	return t.labels[i]
}

// Define binds the label of position i to the current emission point.
func (t *LabelTable) Define(i int) {
	t.mustBeInRange(i)

	if t.defined[i] {
		panic(fmt.Sprintf("label of position %d is already defined", i))
	}

	t.builder.DefineLabel(t.labels[i])
	t.defined[i] = true
}

// Defined reports whether the label of position i has been bound.
func (t *LabelTable) Defined(i int) bool {
	t.mustBeInRange(i)
	return t.defined[i]
}

func (t *LabelTable) mustBeInRange(i int) {
	if i < 0 || i >= len(t.labels) {
		panic(fmt.Sprintf("label index %d out of range [0, %d)", i, len(t.labels)))
	}
}
