package api

import (
	"io"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/ringy/core"
)

// RunnerBuilder creates a new instance of Runner.
type RunnerBuilder struct {
	engine sim.Engine
	freq   sim.Freq
	output io.Writer
	strict bool
	logger *slog.Logger
}

// WithEngine sets the engine.
func (b RunnerBuilder) WithEngine(engine sim.Engine) RunnerBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core that runs the program.
func (b RunnerBuilder) WithFreq(freq sim.Freq) RunnerBuilder {
	b.freq = freq
	return b
}

// WithOutput sets where the program writes its output bytes.
func (b RunnerBuilder) WithOutput(w io.Writer) RunnerBuilder {
	b.output = w
	return b
}

// WithStrict rejects invalid characters and unresolved skip targets.
func (b RunnerBuilder) WithStrict(strict bool) RunnerBuilder {
	b.strict = strict
	return b
}

// WithLogger sets the logger. The default logger is used otherwise.
func (b RunnerBuilder) WithLogger(logger *slog.Logger) RunnerBuilder {
	b.logger = logger
	return b
}

// Build creates a runner.
func (b RunnerBuilder) Build(name string) Runner {
	if b.engine == nil {
		b.engine = sim.NewSerialEngine()
	}

	if b.freq == 0 {
		b.freq = 1 * sim.GHz
	}

	if b.output == nil {
		b.output = io.Discard
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	c := core.NewBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithOutput(b.output).
		Build(name + ".Core")

	return &runnerImpl{
		core:   c,
		strict: b.strict,
		logger: b.logger.With("runner", name, "run", newRunID()),
	}
}
