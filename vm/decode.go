package vm

// Opcode selects an operation. It occupies bits 15-12 of an instruction.
type Opcode uint8

// opcodes
const (
	OP_BR   Opcode = iota /* branch */
	OP_ADD                /* add */
	OP_LD                 /* load */
	OP_ST                 /* store */
	OP_JSR                /* jump register */
	OP_AND                /* bitwise and */
	OP_LDR                /* load register */
	OP_STR                /* store register */
	OP_RTI                /* unused */
	OP_NOT                /* bitwise not */
	OP_LDI                /* load indirect */
	OP_STI                /* store indirect */
	OP_JMP                /* jump */
	OP_RES                /* reserved (unused) */
	OP_LEA                /* load effective address */
	OP_TRAP               /* execute trap */
	OPCODE_COUNT
)

var opcodeNames = [OPCODE_COUNT]string{
	"BR", "ADD", "LD", "ST", "JSR", "AND", "LDR", "STR",
	"RTI", "NOT", "LDI", "STI", "JMP", "RES", "LEA", "TRAP",
}

func (op Opcode) String() string {
	if op < OPCODE_COUNT {
		return opcodeNames[op]
	}
	return f("OP?%d", uint8(op))
}

// DecodeOpcode maps a raw opcode value to its Opcode.
func DecodeOpcode(raw Word) (Opcode, error) {
	if raw >= Word(OPCODE_COUNT) {
		return 0, ErrMalformedInstruction
	}
	return Opcode(raw), nil
}

// DecodeTrapCode maps a raw trap vector to its TrapCode.
func DecodeTrapCode(raw Word) (TrapCode, error) {
	code := TrapCode(raw)
	switch code {
	case TRAP_GETC, TRAP_OUT, TRAP_PUTS, TRAP_IN, TRAP_PUTSP, TRAP_HALT:
		return code, nil
	}
	return 0, ErrMalformedInstruction
}

// SignExtend treats bit bitCount-1 of x as the sign and widens x to 16 bits.
func SignExtend(x Word, bitCount uint) Word {
	if (x>>(bitCount-1))&0b1 != 0 {
		x |= 0xFFFF << bitCount
	}
	return x
}

// Instruction is a raw instruction word.
type Instruction Word

func (in Instruction) Opcode() Word { return Word(in) >> 12 }
func (in Instruction) DR() Word { return (Word(in) >> 9) & 0b111 }
func (in Instruction) SR1() Word { return (Word(in) >> 6) & 0b111 }
func (in Instruction) SR2() Word { return Word(in) & 0b111 }
func (in Instruction) Immediate() bool { return (Word(in)>>5)&0b1 == 1 }
func (in Instruction) Long() bool { return (Word(in)>>11)&0b1 == 1 }
func (in Instruction) TrapVector() Word { return Word(in) & 0xFF }

// NZP is the condition mask of a branch; it shares bits 11-9 with DR.
func (in Instruction) NZP() Word { return in.DR() }

func (in Instruction) Imm5() Word { return SignExtend(Word(in)&0x1F, 5) }
func (in Instruction) Offset6() Word { return SignExtend(Word(in)&0x3F, 6) }
func (in Instruction) PCOffset9() Word { return SignExtend(Word(in)&0x1FF, 9) }
func (in Instruction) PCOffset11() Word { return SignExtend(Word(in)&0x7FF, 11) }

// operands holds the register fields of an instruction, resolved.
// dr doubles as SR for stores and sr1 as BaseR for LDR, STR, JMP and JSRR.
type operands struct {
	dr, sr1, sr2 Register
}

func decodeOperands(in Instruction) (ops operands, err error) {
	if ops.dr, err = RegisterFromField(in.DR()); err != nil {
		return
	}
	if ops.sr1, err = RegisterFromField(in.SR1()); err != nil {
		return
	}
	ops.sr2, err = RegisterFromField(in.SR2())
	return
}
