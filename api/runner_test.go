package api_test

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/ringy/api"
	"github.com/sarchlab/ringy/compiler"
	"github.com/sarchlab/ringy/core"
)

func newRunner(out *bytes.Buffer, strict bool) api.Runner {
	return api.RunnerBuilder{}.
		WithEngine(sim.NewSerialEngine()).
		WithFreq(1 * sim.GHz).
		WithOutput(out).
		WithStrict(strict).
		Build("Runner")
}

func run(src string) (string, error) {
	out := new(bytes.Buffer)
	r := newRunner(out, false)

	if err := r.Compile(strings.NewReader(src)); err != nil {
		return "", err
	}

	err := r.Run()

	return out.String(), err
}

func errorIndex(err error) int {
	var cerr *compiler.Error
	Expect(errors.As(err, &cerr)).To(BeTrue())

	return cerr.Index
}

var _ = Describe("Runner", func() {
	DescribeTable("programs without instructions",
		func(src string) {
			out, err := run(src)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(BeEmpty())
		},
		Entry("empty", ""),
		Entry("newline", "\n"),
		Entry("mixed line endings", "\r\n\n\r"),
	)

	DescribeTable("programs",
		func(src, expected string) {
			out, err := run(src)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(expected))
		},
		Entry("literal output", "'A.", "A"),
		Entry("digit output", "'\x03,", "3"),
		Entry("newline literal", "'\n.", "\n"),
		Entry("fresh tape", ".,", "\x000"),
		Entry("increment", "'A+.", "B"),
		Entry("decrement", "'B-.", "A"),
		Entry("increment wraps", "'\xff+.", "\x00"),
		Entry("decrement wraps", "-.", "\xff"),
		Entry("digit of a wrapped cell", "-,", "/"),
		Entry("pointer moves", "'A>'B<.>.", "AB"),
		Entry("pointer can leave the tape and come back", "<>'A.", "A"),
		Entry("quit stops execution", "'A.q'B.", "A"),
		Entry("quit first", "q'A.", ""),
		Entry("insert zero shifts the tape", "'A>'B<_.>.>.", "\x00AB"),
		Entry("insert zero at the last cell", strings.Repeat(">", 254)+"'A_.", "\x00"),
		Entry("skip body runs on zero cell", ":x'A.x'B.", "AB"),
		Entry("skip body is skipped on non-zero cell", "'1:x'A.x'B.", "B"),
		Entry("skip resumes after the first match", "'1:x.x'C.x'D.", "CD"),
		Entry("skip without a match is a no-op", "'1:z'A.", "A"),
		Entry("skip on a newline", "'1:\n'A.\n'B.", "B"),
		Entry("skip never loops back", ":x'1x.", "1"),
		Entry("nested skips", "'1:a:b'X.b'Y.a'Z.", "Z"),
	)

	It("should report a trailing literal construct", func() {
		_, err := run("'A.'")
		Expect(err).To(MatchError(compiler.ErrMalformedOperand))
		Expect(errorIndex(err)).To(Equal(3))
		Expect(err.Error()).To(HavePrefix("index 3: "))
	})

	It("should report a trailing skip construct", func() {
		_, err := run(":")
		Expect(err).To(MatchError(compiler.ErrMalformedOperand))
		Expect(errorIndex(err)).To(Equal(0))
	})

	It("should not run anything when compile fails", func() {
		out := new(bytes.Buffer)
		r := newRunner(out, false)

		Expect(r.Compile(strings.NewReader("'A.'"))).NotTo(Succeed())
		Expect(r.Run()).To(MatchError(api.ErrNotCompiled))
		Expect(out.Len()).To(BeZero())
	})

	It("should reject a skip that lands on an operand", func() {
		_, err := run(":''x")
		Expect(err).To(MatchError(compiler.ErrBackendCompile))
	})

	It("should fault when reading before the tape", func() {
		out, err := run("'A.<.")
		Expect(err).To(MatchError(core.ErrFault))
		Expect(out).To(Equal("A"))
	})

	It("should fault when writing past the tape", func() {
		_, err := run(strings.Repeat(">", 255) + "'A")
		Expect(err).To(MatchError(core.ErrFault))
	})

	It("should run only once", func() {
		out := new(bytes.Buffer)
		r := newRunner(out, false)

		Expect(r.Compile(strings.NewReader("'A."))).To(Succeed())
		Expect(r.Run()).To(Succeed())
		Expect(r.Run()).To(MatchError(api.ErrAlreadyRun))
		Expect(out.String()).To(Equal("A"))
	})

	It("should produce the same output from independent compiles", func() {
		src := "'1:x'A.x'\x04,>'B.<_>>.q'C."

		first, err := run(src)
		Expect(err).NotTo(HaveOccurred())
		second, err := run(src)
		Expect(err).NotTo(HaveOccurred())

		Expect(first).To(Equal(second))
		Expect(first).To(Equal("4BB"))
	})

	It("should expose the compiled program", func() {
		r := newRunner(new(bytes.Buffer), false)
		Expect(r.Program()).To(BeNil())

		Expect(r.Compile(strings.NewReader("'A."))).To(Succeed())
		prog := r.Program()
		Expect(prog).NotTo(BeNil())
		Expect(prog.Labels).To(HaveLen(4))
		Expect(prog.StackSize).To(Equal(compiler.TapeSize))
	})

	Context("in strict mode", func() {
		It("should reject invalid characters", func() {
			r := newRunner(new(bytes.Buffer), true)
			err := r.Compile(strings.NewReader("'A.x"))
			Expect(err).To(MatchError(compiler.ErrInvalidCharacter))
			Expect(errorIndex(err)).To(Equal(3))
		})

		It("should reject skips without a match", func() {
			r := newRunner(new(bytes.Buffer), true)
			err := r.Compile(strings.NewReader("'1:z'A."))
			Expect(err).To(MatchError(compiler.ErrUnresolvedSkip))
			Expect(errorIndex(err)).To(Equal(2))
		})

		It("should accept valid programs", func() {
			out := new(bytes.Buffer)
			r := newRunner(out, true)
			Expect(r.Compile(strings.NewReader("'1:\n'A.\n'B.\n"))).To(Succeed())
			Expect(r.Run()).To(Succeed())
			Expect(out.String()).To(Equal("B"))
		})
	})
})
