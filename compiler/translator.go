// Package compiler translates tape programs into backend operations.
//
// Translation is a single pass over the source. Each position owns a label
// that is allocated before any code is emitted, so the forward skip construct
// can branch to a position that has not been reached yet.
package compiler

import (
	"fmt"
	"log/slog"

	"github.com/sarchlab/ringy/backend"
)

// TapeSize is the number of bytes in the tape of every compiled program.
const TapeSize = 255

// Option configures a Translator.
type Option func(*Translator)

// WithStrict makes invalid characters and skip constructs without a closing
// character compile errors instead of no-ops.
func WithStrict(strict bool) Option {
	return func(t *Translator) {
		t.strict = strict
	}
}

// WithLogger sets the logger used for translation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) {
		t.logger = logger
	}
}

// Translator walks a Source and emits the operations of every instruction.
// A Translator translates exactly one source.
type Translator struct {
	builder backend.Builder
	strict  bool
	logger  *slog.Logger

	src    *Source
	labels *LabelTable
	ptr    backend.Value
}

// NewTranslator creates a translator that emits into b.
func NewTranslator(b backend.Builder, opts ...Option) *Translator {
	t := &Translator{
		builder: b,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Labels returns the label table of the translated source. It is nil before
// Translate is called.
func (t *Translator) Labels() *LabelTable {
	return t.labels
}

// Translate emits the whole program. It stops at the first error.
func (t *Translator) Translate(src *Source) error {
	if t.src != nil {
		panic("translator already used")
	}

	t.src = src
	t.labels = NewLabelTable(t.builder, src.Len())

	t.emitPrologue()

	for i := 0; i < src.Len(); {
		t.labels.Define(i)

		width, err := t.translateAt(i)
		if err != nil {
			return err
		}

		i += width
	}

	t.builder.Return()

	return nil
}

func (t *Translator) emitPrologue() {
	tape := t.builder.AllocStack(TapeSize)
	t.ptr = t.builder.NewVar()
	t.builder.Assign(t.ptr, tape)
}

// translateAt emits the instruction at position i and returns how many
// positions it occupies.
func (t *Translator) translateAt(i int) (int, error) {
	b := t.builder
	c := t.src.At(i)

	switch c {
	case '<':
		b.Assign(t.ptr, b.Sub(t.ptr, b.Const(1)))
	case '>':
		b.Assign(t.ptr, b.Add(t.ptr, b.Const(1)))
	case '\'':
		operand, err := t.operand(i)
		if err != nil {
			return 0, err
		}

		b.StoreByte(t.ptr, 0, b.Const(int64(operand)))

		return 2, nil
	case '+':
		b.StoreByte(t.ptr, 0, b.Add(b.LoadByte(t.ptr, 0), b.Const(1)))
	case '-':
		b.StoreByte(t.ptr, 0, b.Sub(b.LoadByte(t.ptr, 0), b.Const(1)))
	case '_':
		b.Call(backend.InsertZero, t.ptr)
	case '.':
		b.Call(backend.PutChar, b.LoadByte(t.ptr, 0))
	case ',':
		b.Call(backend.PutChar, b.Add(b.LoadByte(t.ptr, 0), b.Const('0')))
	case ':':
		return t.translateSkip(i)
	case 'q':
		b.Return()
	case '\n', '\r', EOF:
	default:
		if t.strict {
			return 0, errorAt(i, ErrInvalidCharacter, quote(c))
		}

		t.logger.Debug("ignoring character", "index", i, "char", quote(c))
	}

	return 1, nil
}

// translateSkip emits the `:` construct at position i. When the current cell
// is non-zero, control jumps to the position right after the next occurrence
// of the operand character. The construct never branches backward.
func (t *Translator) translateSkip(i int) (int, error) {
	operand, err := t.operand(i)
	if err != nil {
		return 0, err
	}

	match, found := t.src.IndexFrom(i+2, operand)
	if !found {
		if t.strict {
			return 0, errorAt(i, ErrUnresolvedSkip, quote(operand))
		}

		t.logger.Warn("skip target not found, emitting nothing",
			"index", i, "operand", quote(operand))

		return 2, nil
	}

	target := t.labels.Get(match + 1)
	t.logger.Debug("resolved skip",
		"index", i, "operand", quote(operand), "match", match, "target", match+1)

	b := t.builder
	isZero := b.IsZero(b.LoadByte(t.ptr, 0))
	b.BranchIfNot(isZero, target)

	return 2, nil
}

func (t *Translator) operand(i int) (int, error) {
	operand := t.src.At(i + 1)
	if operand == EOF {
		return 0, errorAt(i, ErrMalformedOperand, "after "+quote(t.src.At(i)))
	}

	return operand, nil
}

// Compile translates src into b and finalizes the function. A rejection by
// the backend is reported as ErrBackendCompile.
func Compile(b backend.Builder, src *Source, opts ...Option) (backend.Function, error) {
	err := NewTranslator(b, opts...).Translate(src)
	if err != nil {
		return nil, err
	}

	fn, err := b.Compile()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendCompile, err)
	}

	return fn, nil
}

func quote(c int) string {
	if c == EOF {
		return "EOF"
	}

	return fmt.Sprintf("%q", string(rune(c)))
}
