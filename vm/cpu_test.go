package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type regs struct {
	R0, R1, R2, R3, R4, R5, R6, R7 Word
	PC                             Word
	COND                           Flag
}

type core map[Word]Word

type suite struct {
	name     string
	regs     regs
	core     core
	steps    int
	wantregs regs
	wantcore core
}

func (r regs) load(cpu *cpu) {
	for i, w := range []Word{r.R0, r.R1, r.R2, r.R3, r.R4, r.R5, r.R6, r.R7} {
		cpu.registers.write(Register(i), w)
	}
	cpu.registers.write(PC, r.PC)
	cpu.registers.write(COND, r.COND)
}

func snapshot(cpu *cpu) regs {
	reg := &cpu.registers
	return regs{
		reg.read(R0), reg.read(R1), reg.read(R2), reg.read(R3),
		reg.read(R4), reg.read(R5), reg.read(R6), reg.read(R7),
		reg.read(PC), reg.read(COND),
	}
}

var instrTests = []suite{
	{
		name:     "ADD R0, R0, #1",
		regs:     regs{PC: 0x3000, COND: FLAG_ZRO},
		core:     core{0x3000: 0x1021},
		steps:    1,
		wantregs: regs{R0: 1, PC: 0x3001, COND: FLAG_POS},
	},
	{
		name:     "ADD R2, R0, R1 (wraps to zero)",
		regs:     regs{R0: 0xFFFF, R1: 1, PC: 0x3000, COND: FLAG_POS},
		core:     core{0x3000: 0x1401},
		steps:    1,
		wantregs: regs{R0: 0xFFFF, R1: 1, PC: 0x3001, COND: FLAG_ZRO},
	},
	{
		name:     "ADD R1, R1, #-16",
		regs:     regs{R1: 3, PC: 0x3000},
		core:     core{0x3000: 0x1270},
		steps:    1,
		wantregs: regs{R1: 0xFFF3, PC: 0x3001, COND: FLAG_NEG},
	},
	{
		name:     "AND R3, R3, #0",
		regs:     regs{R3: 0x1234, PC: 0x3000, COND: FLAG_POS},
		core:     core{0x3000: 0x56E0},
		steps:    1,
		wantregs: regs{PC: 0x3001, COND: FLAG_ZRO},
	},
	{
		name:     "AND R0, R1, R2",
		regs:     regs{R1: 0xF0F0, R2: 0xFF00, PC: 0x3000},
		core:     core{0x3000: 0x5042},
		steps:    1,
		wantregs: regs{R0: 0xF000, R1: 0xF0F0, R2: 0xFF00, PC: 0x3001, COND: FLAG_NEG},
	},
	{
		name:     "NOT R4, R5",
		regs:     regs{R5: 0x00FF, PC: 0x3000},
		core:     core{0x3000: 0x997F},
		steps:    1,
		wantregs: regs{R4: 0xFF00, R5: 0x00FF, PC: 0x3001, COND: FLAG_NEG},
	},
	{
		name:     "BRnzp #2",
		regs:     regs{PC: 0x3000, COND: FLAG_ZRO},
		core:     core{0x3000: 0x0E02},
		steps:    1,
		wantregs: regs{PC: 0x3003, COND: FLAG_ZRO},
	},
	{
		name:     "BRnz #-1 taken on NEG",
		regs:     regs{PC: 0x3000, COND: FLAG_NEG},
		core:     core{0x3000: 0x0DFF},
		steps:    1,
		wantregs: regs{PC: 0x3000, COND: FLAG_NEG},
	},
	{
		name:     "BRzp #4 taken on POS",
		regs:     regs{PC: 0x3000, COND: FLAG_POS},
		core:     core{0x3000: 0x0604},
		steps:    1,
		wantregs: regs{PC: 0x3005, COND: FLAG_POS},
	},
	{
		name:     "BRp #4 not taken on ZRO",
		regs:     regs{PC: 0x3000, COND: FLAG_ZRO},
		core:     core{0x3000: 0x0204},
		steps:    1,
		wantregs: regs{PC: 0x3001, COND: FLAG_ZRO},
	},
	{
		name:     "NOP (BR with empty mask)",
		regs:     regs{PC: 0x3000, COND: FLAG_POS},
		core:     core{0x3000: 0x0000},
		steps:    1,
		wantregs: regs{PC: 0x3001, COND: FLAG_POS},
	},
	{
		name:     "LD R1, #1",
		regs:     regs{PC: 0x3000},
		core:     core{0x3000: 0x2201, 0x3002: 0x8001},
		steps:    1,
		wantregs: regs{R1: 0x8001, PC: 0x3001, COND: FLAG_NEG},
	},
	{
		name:     "LDI R2, #1",
		regs:     regs{PC: 0x3000},
		core:     core{0x3000: 0xA401, 0x3002: 0x4000, 0x4000: 0x0007},
		steps:    1,
		wantregs: regs{R2: 7, PC: 0x3001, COND: FLAG_POS},
	},
	{
		name:     "LDR R0, R6, #-1",
		regs:     regs{R6: 0x4001, PC: 0x3000},
		core:     core{0x3000: 0x61BF, 0x4000: 0x0000},
		steps:    1,
		wantregs: regs{R6: 0x4001, PC: 0x3001, COND: FLAG_ZRO},
	},
	{
		name:     "LEA R0, #-2",
		regs:     regs{PC: 0x3000},
		core:     core{0x3000: 0xE1FE},
		steps:    1,
		wantregs: regs{R0: 0x2FFF, PC: 0x3001, COND: FLAG_POS},
	},
	{
		name:     "ST R3, #2",
		regs:     regs{R3: 0xCAFE, PC: 0x3000, COND: FLAG_ZRO},
		core:     core{0x3000: 0x3602},
		steps:    1,
		wantregs: regs{R3: 0xCAFE, PC: 0x3001, COND: FLAG_ZRO},
		wantcore: core{0x3003: 0xCAFE},
	},
	{
		name:     "STI R1, #0",
		regs:     regs{R1: 0x0042, PC: 0x3000, COND: FLAG_ZRO},
		core:     core{0x3000: 0xB200, 0x3001: 0x5000},
		steps:    1,
		wantregs: regs{R1: 0x0042, PC: 0x3001, COND: FLAG_ZRO},
		wantcore: core{0x5000: 0x0042, 0x3001: 0x5000},
	},
	{
		name:     "STR R0, R1, #31 (wraps)",
		regs:     regs{R0: 9, R1: 0xFFF0, PC: 0x3000, COND: FLAG_ZRO},
		core:     core{0x3000: 0x705F},
		steps:    1,
		wantregs: regs{R0: 9, R1: 0xFFF0, PC: 0x3001, COND: FLAG_ZRO},
		wantcore: core{0x000F: 9},
	},
	{
		name:     "JMP R2",
		regs:     regs{R2: 0x4000, PC: 0x3000, COND: FLAG_ZRO},
		core:     core{0x3000: 0xC080},
		steps:    1,
		wantregs: regs{R2: 0x4000, PC: 0x4000, COND: FLAG_ZRO},
	},
	{
		name:     "RET",
		regs:     regs{R7: 0x3456, PC: 0x3000, COND: FLAG_ZRO},
		core:     core{0x3000: 0xC1C0},
		steps:    1,
		wantregs: regs{R7: 0x3456, PC: 0x3456, COND: FLAG_ZRO},
	},
	{
		name:     "JSR #-2",
		regs:     regs{PC: 0x3000, COND: FLAG_ZRO},
		core:     core{0x3000: 0x4FFE},
		steps:    1,
		wantregs: regs{R7: 0x3001, PC: 0x2FFF, COND: FLAG_ZRO},
	},
	{
		name:     "JSRR R3",
		regs:     regs{R3: 0x5000, PC: 0x3000, COND: FLAG_ZRO},
		core:     core{0x3000: 0x40C0},
		steps:    1,
		wantregs: regs{R3: 0x5000, R7: 0x3001, PC: 0x5000, COND: FLAG_ZRO},
	},
	{
		name:     "JSRR R7 jumps to the return address",
		regs:     regs{R7: 0x5000, PC: 0x3000, COND: FLAG_ZRO},
		core:     core{0x3000: 0x41C0},
		steps:    1,
		wantregs: regs{R7: 0x3001, PC: 0x3001, COND: FLAG_ZRO},
	},
	{
		name:     "fetch wraps at 0xFFFF",
		regs:     regs{PC: 0xFFFF, COND: FLAG_ZRO},
		core:     core{0xFFFF: 0x1021},
		steps:    1,
		wantregs: regs{R0: 1, PC: 0x0000, COND: FLAG_POS},
	},
	{
		name:     "count down loop",
		regs:     regs{R0: 3, PC: 0x3000, COND: FLAG_ZRO},
		core:     core{0x3000: 0x103F, 0x3001: 0x03FE}, // ADD R0, R0, #-1; BRp #-2
		steps:    6,
		wantregs: regs{PC: 0x3002, COND: FLAG_ZRO},
	},
}

func TestInstructions(t *testing.T) {
	for _, tt := range instrTests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			ft := &fakeTerminal{}
			cpu := newCpu(newMemory(ft), ft)
			tt.regs.load(cpu)
			for addr, w := range tt.core {
				cpu.memory.write(addr, w)
			}

			for i := 0; i < tt.steps; i++ {
				require.NoError(t, cpu.step())
			}

			assert.Equal(tt.wantregs, snapshot(cpu))
			for addr, w := range tt.wantcore {
				assert.Equal(w, cpu.memory.ram[addr], "core %#04x", addr)
			}
			assert.True(cpu.running)
		})
	}
}

func TestUnimplementedOpcodes(t *testing.T) {
	for _, instr := range []Word{0x8000, 0xD000, 0x8FFF, 0xDABC} {
		assert := assert.New(t)

		ft := &fakeTerminal{}
		machine := NewVM(ft)
		machine.Write(0x3000, 0x1021) // ADD R0, R0, #1
		machine.Write(0x3001, instr)
		machine.Write(0x3002, 0xF025)

		err := machine.Run()
		assert.ErrorIs(err, ErrUnimplementedOpcode, "%#04x", instr)
		assert.NotContains(err.Error(), "opcode opcode")

		var runtime *ErrRuntime
		if assert.ErrorAs(err, &runtime) {
			assert.Equal(Word(0x3001), runtime.PC)
			assert.Equal(instr, runtime.Instruction)
		}

		assert.True(machine.Halted())
		assert.Equal(Word(1), machine.Register(R0))
		assert.Empty(ft.output.String(), "HALT must not run")

		// A stopped machine stays stopped.
		halted, err := machine.Step()
		assert.True(halted)
		assert.NoError(err)
	}
}

func TestMalformedTrapVector(t *testing.T) {
	machine := NewVM(&fakeTerminal{})
	machine.Write(0x3000, 0xF0FF)

	err := machine.Run()
	assert.ErrorIs(t, err, ErrMalformedInstruction)
	assert.Equal(t, Word(0x3001), machine.Register(R7))
}

func TestErrOpcodeMessage(t *testing.T) {
	assert.Equal(t, ErrUnimplementedOpcode.Error()+" RTI", ErrOpcode(OP_RTI).Error())
	assert.Equal(t, ErrUnimplementedOpcode.Error()+" RES", ErrOpcode(OP_RES).Error())
}
