// Package api defines the runner API that compiles and executes tape programs.
package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/rs/xid"
	"github.com/sarchlab/ringy/backend"
	"github.com/sarchlab/ringy/compiler"
	"github.com/sarchlab/ringy/core"
)

// Errors returned when the Runner is used out of order.
var (
	ErrNotCompiled = errors.New("program not compiled")
	ErrAlreadyRun  = errors.New("program already run")
)

// Runner translates a program, finalizes it, and runs it once.
type Runner interface {
	// Compile reads the whole source from r, translates it and finalizes the
	// compiled function. Nothing runs when Compile fails.
	Compile(r io.Reader) error

	// Run invokes the compiled function. It can be called once.
	Run() error

	// Program returns the compiled instructions, or nil before Compile.
	Program() *core.Program
}

type runnerImpl struct {
	core   *core.Core
	strict bool
	logger *slog.Logger

	builder *core.FunctionBuilder
	fn      backend.Function
	ran     bool
}

func (r *runnerImpl) Compile(src io.Reader) error {
	if r.builder != nil {
		return fmt.Errorf("%s: compile called twice", r.core.Name())
	}

	source, err := compiler.ReadSource(src)
	if err != nil {
		return err
	}

	r.builder = r.core.NewFunction()
	r.logger.Debug("compiling", "positions", source.Len())

	fn, err := compiler.Compile(r.builder, source,
		compiler.WithStrict(r.strict),
		compiler.WithLogger(r.logger),
	)
	if err != nil {
		return err
	}

	r.fn = fn
	r.logger.Debug("compiled",
		"insts", len(r.builder.Program().Insts),
		"labels", len(r.builder.Program().Labels),
	)

	return nil
}

func (r *runnerImpl) Run() error {
	if r.fn == nil {
		return ErrNotCompiled
	}

	if r.ran {
		return ErrAlreadyRun
	}

	r.ran = true

	err := r.fn.Invoke()
	r.logger.Debug("finished", "steps", r.core.Steps(), "err", err)

	return err
}

func (r *runnerImpl) Program() *core.Program {
	if r.builder == nil {
		return nil
	}

	return r.builder.Program()
}

func newRunID() string {
	return xid.New().String()
}
