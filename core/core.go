package core

import (
	"fmt"
	"io"

	"github.com/sarchlab/akita/v4/sim"
)

// Core executes compiled functions. Each tick runs one instruction.
type Core struct {
	*sim.TickingComponent

	state coreState
	emu   instEmulator
}

// SetOutput changes where PutChar writes.
func (c *Core) SetOutput(w io.Writer) {
	c.emu.output = w
}

// MapProgram sets the program that the core needs to run and gives it a
// fresh, zeroed activation frame.
func (c *Core) MapProgram(prog *Program) {
	c.state = newCoreState(prog)
	Trace("MapProgram",
		"Core", c.Name(),
		"Program", prog.Name,
		"Insts", len(prog.Insts),
		"StackSize", prog.StackSize,
	)
}

// Execute runs the program until it returns or faults.
func (c *Core) Execute(prog *Program) error {
	c.MapProgram(prog)
	c.Engine.Schedule(sim.MakeTickEvent(c.TickingComponent, c.Engine.CurrentTime()))
	if err := c.Engine.Run(); err != nil {
		return fmt.Errorf("%w: engine stopped: %v", ErrFault, err)
	}

	LogState(c.Name(), &c.state)

	if !c.state.Halted {
		return fmt.Errorf("%w: %s stopped at PC %d before returning",
			ErrFault, prog.Name, c.state.PC)
	}

	return c.state.Err
}

// Steps returns the number of instructions executed by the last program.
func (c *Core) Steps() uint64 {
	return c.state.Steps
}

// Tick runs the program for one cycle.
func (c *Core) Tick() (madeProgress bool) {
	if c.state.Code == nil || c.state.Halted {
		return false
	}

	if c.state.PC >= len(c.state.Code.Insts) {
		c.state.Halted = true
		return true
	}

	inst := c.state.Code.Insts[c.state.PC]
	Trace("Inst",
		"Core", c.Name(),
		"Time", float64(c.Engine.CurrentTime()*1e9),
		"PC", c.state.PC,
		"Inst", inst.String(),
	)

	err := c.emu.RunInst(inst, &c.state)
	if err != nil {
		c.state.Err = err
		c.state.Halted = true
	}

	return true
}
