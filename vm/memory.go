package vm

const MemorySize = 1 << 16
const (
	TrapVectorTableStart       = 0x0000
	InterruptVectorTableStart  = 0x0100
	SystemSpaceStart           = 0x0200
	UserSpaceStart             = 0x3000
	MemoryMappedRegistersStart = 0xFE00
)

// memory mapped register addresses
const (
	KBSR Word = MemoryMappedRegistersStart          /* keyboard status register */
	KBDR Word = MemoryMappedRegistersStart + 0x0002 /* keyboard data register */
)

const keyReady Word = 0x8000

type memory struct {
	ram      [MemorySize]Word
	terminal Terminal
	err      error
}

// write stores value unconditionally, mapped registers included.
func (mem *memory) write(addr, value Word) {
	mem.ram[addr] = value
}

// read returns the word at addr. Reading KBSR first samples the terminal.
// A terminal failure is kept and reported by takeErr.
func (mem *memory) read(addr Word) Word {
	if addr == KBSR {
		mem.sampleKeyboard()
	}
	return mem.ram[addr]
}

func (mem *memory) sampleKeyboard() {
	if mem.terminal == nil || !mem.terminal.Pending() {
		mem.ram[KBSR] = 0
		return
	}

	c, err := mem.terminal.ReadByte()
	if err != nil {
		mem.ram[KBSR] = 0
		if mem.err == nil {
			mem.err = &ErrTerminal{Op: "keyboard", Err: err}
		}
		return
	}
	mem.ram[KBSR] = keyReady
	mem.ram[KBDR] = Word(c)
}

func (mem *memory) takeErr() (err error) {
	err, mem.err = mem.err, nil
	return
}

func newMemory(terminal Terminal) *memory {
	return &memory{terminal: terminal}
}
