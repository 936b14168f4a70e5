package core

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ringy/backend"
)

var _ = Describe("InstEmulator", func() {
	var (
		out *bytes.Buffer
		ie  instEmulator
		s   coreState
	)

	BeforeEach(func() {
		out = new(bytes.Buffer)
		ie = instEmulator{output: out}
		s = newCoreState(&Program{
			Labels:    []int{5, 2},
			NumValues: 8,
			Allocs:    []StackAlloc{{Offset: 0, Size: 4}, {Offset: 4, Size: 4}},
			StackSize: 8,
		})
	})

	Context("Arithmetic Instructions", func() {
		It("should load constants", func() {
			Expect(ie.RunInst(Inst{OpCode: OpConst, Dst: 0, Imm: 42}, &s)).To(Succeed())
			Expect(s.Values[0]).To(Equal(int64(42)))
			Expect(s.PC).To(Equal(1))
		})

		It("should add and subtract", func() {
			s.Values[0] = 7
			s.Values[1] = 3
			Expect(ie.RunInst(Inst{OpCode: OpAdd, Dst: 2, Src: []backend.Value{0, 1}}, &s)).To(Succeed())
			Expect(ie.RunInst(Inst{OpCode: OpSub, Dst: 3, Src: []backend.Value{1, 0}}, &s)).To(Succeed())
			Expect(s.Values[2]).To(Equal(int64(10)))
			Expect(s.Values[3]).To(Equal(int64(-4)))
		})

		It("should move values", func() {
			s.Values[4] = 99
			Expect(ie.RunInst(Inst{OpCode: OpMov, Dst: 5, Src: []backend.Value{4}}, &s)).To(Succeed())
			Expect(s.Values[5]).To(Equal(int64(99)))
		})

		It("should compare with zero", func() {
			s.Values[1] = 3
			Expect(ie.RunInst(Inst{OpCode: OpIsZero, Dst: 2, Src: []backend.Value{0}}, &s)).To(Succeed())
			Expect(ie.RunInst(Inst{OpCode: OpIsZero, Dst: 3, Src: []backend.Value{1}}, &s)).To(Succeed())
			Expect(s.Values[2]).To(Equal(int64(1)))
			Expect(s.Values[3]).To(Equal(int64(0)))
		})
	})

	Context("Memory Instructions", func() {
		It("should resolve stack buffers to frame addresses", func() {
			Expect(ie.RunInst(Inst{OpCode: OpAlloca, Dst: 0, Imm: 1}, &s)).To(Succeed())
			Expect(s.Values[0]).To(Equal(int64(StackBase + 4)))
		})

		It("should store the low byte and load it back", func() {
			s.Values[0] = StackBase
			s.Values[1] = 0x1FF
			Expect(ie.RunInst(Inst{OpCode: OpStoreB, Src: []backend.Value{0, 1}, Imm: 2}, &s)).To(Succeed())
			Expect(ie.RunInst(Inst{OpCode: OpLoadB, Dst: 2, Src: []backend.Value{0}, Imm: 2}, &s)).To(Succeed())
			Expect(s.Frame[2]).To(Equal(byte(0xFF)))
			Expect(s.Values[2]).To(Equal(int64(0xFF)))
		})

		It("should fault outside the frame", func() {
			s.Values[0] = StackBase - 1
			err := ie.RunInst(Inst{OpCode: OpLoadB, Dst: 1, Src: []backend.Value{0}}, &s)
			Expect(err).To(MatchError(ErrFault))
			Expect(s.PC).To(Equal(0))

			s.Values[0] = StackBase + 8
			err = ie.RunInst(Inst{OpCode: OpStoreB, Src: []backend.Value{0, 0}}, &s)
			Expect(err).To(MatchError(ErrFault))
		})
	})

	Context("Control Instructions", func() {
		It("should jump unconditionally", func() {
			Expect(ie.RunInst(Inst{OpCode: OpJmp, Target: 1}, &s)).To(Succeed())
			Expect(s.PC).To(Equal(2))
		})

		It("should jump on non-zero", func() {
			s.Values[0] = 1
			Expect(ie.RunInst(Inst{OpCode: OpJnz, Src: []backend.Value{0}, Target: 0}, &s)).To(Succeed())
			Expect(s.PC).To(Equal(5))
		})

		It("should fall through on zero", func() {
			Expect(ie.RunInst(Inst{OpCode: OpJnz, Src: []backend.Value{0}, Target: 0}, &s)).To(Succeed())
			Expect(s.PC).To(Equal(1))
		})

		It("should jump on zero", func() {
			Expect(ie.RunInst(Inst{OpCode: OpJz, Src: []backend.Value{0}, Target: 1}, &s)).To(Succeed())
			Expect(s.PC).To(Equal(2))
		})

		It("should halt on return", func() {
			Expect(ie.RunInst(Inst{OpCode: OpRet}, &s)).To(Succeed())
			Expect(s.Halted).To(BeTrue())
		})

		It("should fault on unknown opcodes", func() {
			Expect(ie.RunInst(Inst{OpCode: "NOPE"}, &s)).To(MatchError(ErrFault))
		})
	})

	Context("Calls", func() {
		It("should write the low byte of the argument", func() {
			s.Values[0] = 0x141
			Expect(ie.RunInst(Inst{OpCode: OpCall, Src: []backend.Value{0}, Imm: int64(backend.PutChar)}, &s)).To(Succeed())
			Expect(out.Bytes()).To(Equal([]byte{'A'}))
			Expect(s.PC).To(Equal(1))
		})

		It("should insert a zero and shift the buffer up", func() {
			copy(s.Frame, []byte{1, 2, 3, 4, 5, 6, 7, 8})
			s.Values[0] = StackBase + 1
			Expect(ie.RunInst(Inst{OpCode: OpCall, Src: []backend.Value{0}, Imm: int64(backend.InsertZero)}, &s)).To(Succeed())
			Expect(s.Frame).To(Equal([]byte{1, 0, 2, 3, 5, 6, 7, 8}))
		})

		It("should only clear the last byte of a buffer", func() {
			copy(s.Frame, []byte{1, 2, 3, 4, 5, 6, 7, 8})
			s.Values[0] = StackBase + 7
			Expect(ie.RunInst(Inst{OpCode: OpCall, Src: []backend.Value{0}, Imm: int64(backend.InsertZero)}, &s)).To(Succeed())
			Expect(s.Frame).To(Equal([]byte{1, 2, 3, 4, 5, 6, 7, 0}))
		})

		It("should fault when inserting outside the frame", func() {
			s.Values[0] = StackBase + 100
			err := ie.RunInst(Inst{OpCode: OpCall, Src: []backend.Value{0}, Imm: int64(backend.InsertZero)}, &s)
			Expect(err).To(MatchError(ErrFault))
		})

		It("should fault on unknown externs", func() {
			err := ie.RunInst(Inst{OpCode: OpCall, Src: []backend.Value{0}, Imm: 99}, &s)
			Expect(err).To(MatchError(ErrFault))
		})
	})
})
