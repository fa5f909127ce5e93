package vm

// TrapCode selects a service routine. It occupies bits 7-0 of a TRAP instruction.
type TrapCode Word

const (
	TRAP_GETC  TrapCode = 0x20 /* get character from keyboard, not echoed onto the terminal */
	TRAP_OUT   TrapCode = 0x21 /* output a character */
	TRAP_PUTS  TrapCode = 0x22 /* output a word string */
	TRAP_IN    TrapCode = 0x23 /* get character from keyboard, echoed onto the terminal */
	TRAP_PUTSP TrapCode = 0x24 /* output a byte string */
	TRAP_HALT  TrapCode = 0x25 /* halt the program */
)

const (
	inPrompt   = "Enter a character: "
	haltMarker = "HALT\n"
)

func (code TrapCode) String() string {
	switch code {
	case TRAP_GETC:
		return "GETC"
	case TRAP_OUT:
		return "OUT"
	case TRAP_PUTS:
		return "PUTS"
	case TRAP_IN:
		return "IN"
	case TRAP_PUTSP:
		return "PUTSP"
	case TRAP_HALT:
		return "HALT"
	}
	return f("TRAP?0x%02x", uint16(code))
}

// trap runs the service routine for code. R7 already holds the return address.
func (cpu *cpu) trap(code TrapCode) error {
	switch code {
	case TRAP_GETC:
		c, err := cpu.getc()
		if err != nil {
			return err
		}
		cpu.registers.write(R0, Word(c))
		cpu.registers.updateFlags(R0)

	case TRAP_OUT:
		return cpu.output(code, []byte{byte(cpu.registers.read(R0))})

	case TRAP_PUTS:
		var buf []byte
		for addr := cpu.registers.read(R0); ; addr++ {
			c := cpu.memory.read(addr)
			if c == 0 {
				break
			}
			buf = append(buf, byte(c))
		}
		return cpu.output(code, buf)

	case TRAP_IN:
		if err := cpu.output(code, []byte(inPrompt)); err != nil {
			return err
		}
		c, err := cpu.getc()
		if err != nil {
			return err
		}
		if err := cpu.output(code, []byte{c}); err != nil {
			return err
		}
		cpu.registers.write(R0, Word(c))
		cpu.registers.updateFlags(R0)

	case TRAP_PUTSP:
		var buf []byte
		for addr := cpu.registers.read(R0); ; addr++ {
			w := cpu.memory.read(addr)
			if w == 0 {
				break
			}
			buf = append(buf, byte(w))
			if w>>8 != 0 {
				buf = append(buf, byte(w>>8))
			}
		}
		return cpu.output(code, buf)

	case TRAP_HALT:
		if err := cpu.output(code, []byte(haltMarker)); err != nil {
			return err
		}
		cpu.stop()

	default:
		return ErrMalformedInstruction
	}

	return nil
}

func (cpu *cpu) getc() (byte, error) {
	c, err := cpu.terminal.ReadByte()
	if err != nil {
		return 0, &ErrTerminal{Op: "read", Err: err}
	}
	return c, nil
}

func (cpu *cpu) output(code TrapCode, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if _, err := cpu.terminal.Write(p); err != nil {
		return &ErrTerminal{Op: code.String(), Err: err}
	}
	return nil
}
