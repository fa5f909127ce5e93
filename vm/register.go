package vm

// Word is the machine's storage and arithmetic unit. Arithmetic wraps.
type Word uint16

// Register names a slot of the register file.
type Register uint8

// general purpose registers
const (
	R0 Register = 0b000
	R1 Register = 0b001
	R2 Register = 0b010
	R3 Register = 0b011
	R4 Register = 0b100
	R5 Register = 0b101
	R6 Register = 0b110
	R7 Register = 0b111
)

// internal registers
const (
	PC             Register = 8 // program counter
	COND           Register = 9 // condition flags
	REGISTER_COUNT          = 10
)

var registerNames = [REGISTER_COUNT]string{"R0", "R1", "R2", "R3", "R4", "R5", "R6", "R7", "PC", "COND"}

func (r Register) String() string {
	if int(r) < len(registerNames) {
		return registerNames[r]
	}
	return f("R?%d", uint8(r))
}

// Flag is the content of COND. Exactly one flag is set after a flag-setting instruction.
type Flag = Word

// flags
const (
	FLAG_POS Flag = 0b001
	FLAG_ZRO Flag = 0b010
	FLAG_NEG Flag = 0b100
)

// RegisterFromField resolves a raw general purpose register field.
func RegisterFromField(raw Word) (Register, error) {
	if raw > Word(R7) {
		return 0, ErrInvalidRegister
	}
	return Register(raw), nil
}

type registers struct {
	data [REGISTER_COUNT]Word
}

func (reg *registers) read(r Register) Word {
	return reg.data[r]
}

func (reg *registers) write(r Register, value Word) {
	reg.data[r] = value
}

// updateFlags sets COND from the current content of r.
func (reg *registers) updateFlags(r Register) {
	switch value := reg.data[r]; {
	case value == 0:
		reg.data[COND] = FLAG_ZRO
	case value>>15 != 0:
		reg.data[COND] = FLAG_NEG
	default:
		reg.data[COND] = FLAG_POS
	}
}
