package vm

type cpu struct {
	running   bool
	memory    *memory
	registers registers
	terminal  Terminal
}

func newCpu(mem *memory, terminal Terminal) *cpu {
	cpu := &cpu{
		running:  true,
		memory:   mem,
		terminal: terminal,
	}
	cpu.registers.write(PC, UserSpaceStart)
	cpu.registers.write(COND, FLAG_ZRO)
	return cpu
}

func (cpu *cpu) stop() {
	cpu.running = false
}

// step fetches, decodes and executes one instruction.
func (cpu *cpu) step() error {
	// only failures raised by this instruction are its faults
	cpu.memory.takeErr()

	pc := cpu.registers.read(PC)
	instruction := cpu.memory.read(pc)
	cpu.registers.write(PC, pc+1)

	err := cpu.execute(Instruction(instruction))
	if err == nil {
		err = cpu.memory.takeErr()
	}
	if err != nil {
		cpu.stop()
		return &ErrRuntime{PC: pc, Instruction: instruction, Err: err}
	}
	return nil
}

func (cpu *cpu) execute(in Instruction) error {
	op, err := DecodeOpcode(in.Opcode())
	if err != nil {
		return err
	}
	ops, err := decodeOperands(in)
	if err != nil {
		return err
	}

	reg := &cpu.registers
	mem := cpu.memory
	pc := reg.read(PC)

	switch op {
	case OP_BR:
		if in.NZP()&reg.read(COND) != 0 {
			reg.write(PC, pc+in.PCOffset9())
		}

	case OP_ADD:
		if in.Immediate() {
			reg.write(ops.dr, reg.read(ops.sr1)+in.Imm5())
		} else {
			reg.write(ops.dr, reg.read(ops.sr1)+reg.read(ops.sr2))
		}
		reg.updateFlags(ops.dr)

	case OP_LD:
		reg.write(ops.dr, mem.read(pc+in.PCOffset9()))
		reg.updateFlags(ops.dr)

	case OP_ST:
		mem.write(pc+in.PCOffset9(), reg.read(ops.dr))

	case OP_JSR:
		reg.write(R7, pc)
		if in.Long() {
			reg.write(PC, pc+in.PCOffset11())
		} else {
			// base is read after R7 is written, so JSRR R7 jumps to the return address.
			reg.write(PC, reg.read(ops.sr1))
		}

	case OP_AND:
		if in.Immediate() {
			reg.write(ops.dr, reg.read(ops.sr1)&in.Imm5())
		} else {
			reg.write(ops.dr, reg.read(ops.sr1)&reg.read(ops.sr2))
		}
		reg.updateFlags(ops.dr)

	case OP_LDR:
		reg.write(ops.dr, mem.read(reg.read(ops.sr1)+in.Offset6()))
		reg.updateFlags(ops.dr)

	case OP_STR:
		mem.write(reg.read(ops.sr1)+in.Offset6(), reg.read(ops.dr))

	case OP_RTI, OP_RES:
		return ErrOpcode(op)

	case OP_NOT:
		reg.write(ops.dr, ^reg.read(ops.sr1))
		reg.updateFlags(ops.dr)

	case OP_LDI:
		reg.write(ops.dr, mem.read(mem.read(pc+in.PCOffset9())))
		reg.updateFlags(ops.dr)

	case OP_STI:
		mem.write(mem.read(pc+in.PCOffset9()), reg.read(ops.dr))

	case OP_JMP:
		reg.write(PC, reg.read(ops.sr1))

	case OP_LEA:
		reg.write(ops.dr, pc+in.PCOffset9())
		reg.updateFlags(ops.dr)

	case OP_TRAP:
		reg.write(R7, pc)
		code, err := DecodeTrapCode(in.TrapVector())
		if err != nil {
			return err
		}
		return cpu.trap(code)

	default:
		return ErrMalformedInstruction
	}

	return nil
}
