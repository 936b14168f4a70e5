// Command ringy compiles a tape program and runs it.
//
//	ringy [-config file] [-strict] [-dump] [-dump-file path] [-log-level lvl] [-log-file path] [path]
//
// The program is read from path, or from standard input when no path is given.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/ringy/api"
	"github.com/sarchlab/ringy/compiler"
	"github.com/sarchlab/ringy/config"
	"github.com/sarchlab/ringy/verify"
	"github.com/tebeka/atexit"
)

type app struct {
	stdin  io.Reader
	stdout *bufio.Writer
	stderr io.Writer

	logFile *os.File
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: bufio.NewWriter(stdout),
		stderr: stderr,
	}
}

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	atexit.Register(a.close)
	atexit.Exit(a.run(os.Args[1:]))
}

// close flushes the program output and closes the log file.
func (a *app) close() {
	a.stdout.Flush()

	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

func (a *app) fatal(err error) int {
	a.stdout.Flush()
	fmt.Fprintf(a.stderr, "fatal error: %v\n", err)

	return 1
}

func (a *app) run(args []string) int {
	cfg, path, err := a.parseArgs(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}

	if err != nil {
		return a.fatal(err)
	}

	logger, err := a.setupLogging(cfg)
	if err != nil {
		return a.fatal(err)
	}

	src := a.stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			logger.Debug("open failed", "path", path, "err", err)
			return a.fatal(compiler.ErrInputUnavailable)
		}
		defer f.Close()

		src = f
	}

	runner := api.RunnerBuilder{}.
		WithEngine(sim.NewSerialEngine()).
		WithFreq(sim.Freq(cfg.FreqGHz) * sim.GHz).
		WithOutput(a.stdout).
		WithStrict(cfg.Strict).
		WithLogger(logger).
		Build("Ringy")

	if err := runner.Compile(src); err != nil {
		return a.fatal(err)
	}

	switch {
	case cfg.DumpFile != "":
		report := verify.GenerateReport(runner.Program())
		if err := report.SaveReportToFile(cfg.DumpFile); err != nil {
			return a.fatal(err)
		}
	case cfg.Dump:
		verify.GenerateReport(runner.Program()).WriteReport(a.stderr)
	}

	if err := runner.Run(); err != nil {
		return a.fatal(err)
	}

	return 0
}

// parseArgs resolves the configuration layers. Flags are applied last and
// only when given explicitly.
func (a *app) parseArgs(args []string) (config.Config, string, error) {
	fs := flag.NewFlagSet("ringy", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: ringy [flags] [path]")
		fs.PrintDefaults()
	}

	def := config.Default()
	configPath := fs.String("config", "", "YAML config file (default $"+config.EnvConfig+")")
	strict := fs.Bool("strict", def.Strict, "reject invalid characters and unresolved skip targets")
	dump := fs.Bool("dump", def.Dump, "write the compiled listing and lint report to stderr")
	dumpFile := fs.String("dump-file", def.DumpFile, "write the listing and lint report to this file instead of stderr")
	logLevel := fs.String("log-level", def.LogLevel, "trace, debug, info, warn or error")
	logFile := fs.String("log-file", def.LogFile, "write JSON logs to this file instead of stderr")

	if err := fs.Parse(args); err != nil {
		return def, "", err
	}

	if fs.NArg() > 1 {
		return def, "", fmt.Errorf("too many arguments: %v", fs.Args())
	}

	var (
		cfg config.Config
		err error
	)

	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		cfg.ApplyEnv()
	} else {
		cfg, err = config.FromEnv()
	}

	if err != nil {
		return cfg, "", err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strict":
			cfg.Strict = *strict
		case "dump":
			cfg.Dump = *dump
		case "dump-file":
			cfg.DumpFile = *dumpFile
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-file":
			cfg.LogFile = *logFile
		}
	})

	if err := cfg.Validate(); err != nil {
		return cfg, "", err
	}

	return cfg, fs.Arg(0), nil
}

func (a *app) setupLogging(cfg config.Config) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}

		a.logFile = f
		handler = slog.NewJSONHandler(f, opts)
	} else {
		handler = slog.NewTextHandler(a.stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, nil
}
