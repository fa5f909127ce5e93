// Package vm executes LC-3 programs resident in a 65,536 word memory.
//
// The machine has eight general purpose registers, a program counter and a
// condition register. Execution starts at UserSpaceStart and ends when the
// program invokes the HALT trap. Character I/O goes through a Terminal, both
// for the GETC, OUT, PUTS, IN and PUTSP traps and for the keyboard status and
// data registers mapped at KBSR and KBDR.
package vm

import (
	"bufio"
	"errors"
	"fmt"
	goIO "io"

	"github.com/sirupsen/logrus"
)

type VM struct {
	memory *memory
	cpu    *cpu
	log    logrus.FieldLogger
}

// Option configures a VM.
type Option func(vm *VM)

// WithLogger sets the lifecycle logger. The default is the logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(vm *VM) {
		vm.log = log
	}
}

// NewVM returns a VM with zeroed memory, PC at UserSpaceStart and COND at FLAG_ZRO.
func NewVM(terminal Terminal, opts ...Option) *VM {
	mem := newMemory(terminal)
	vm := &VM{
		memory: mem,
		cpu:    newCpu(mem, terminal),
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Run executes until HALT or a fatal condition. It returns nil after HALT.
func (vm *VM) Run() error {
	vm.log.WithField("pc", fmt.Sprintf("0x%04x", uint16(vm.cpu.registers.read(PC)))).Debug("running")
	for {
		halted, err := vm.Step()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}

// Step executes a single instruction. Stepping a halted VM does nothing.
func (vm *VM) Step() (halted bool, err error) {
	if !vm.cpu.running {
		return true, nil
	}

	err = vm.cpu.step()
	if err != nil {
		entry := vm.log.WithError(err)
		var runtime *ErrRuntime
		if errors.As(err, &runtime) {
			entry = entry.WithFields(logrus.Fields{
				"pc":          fmt.Sprintf("0x%04x", uint16(runtime.PC)),
				"instruction": fmt.Sprintf("0x%04x", uint16(runtime.Instruction)),
			})
		}
		entry.Debug("execution stopped")
		return true, err
	}

	if !vm.cpu.running {
		vm.log.Debug("halted")
		return true, nil
	}
	return false, nil
}

// Halted reports whether the VM has stopped.
func (vm *VM) Halted() bool {
	return !vm.cpu.running
}

// Register returns the content of r.
func (vm *VM) Register(r Register) Word {
	return vm.cpu.registers.read(r)
}

// SetRegister stores value in r.
func (vm *VM) SetRegister(r Register, value Word) {
	vm.cpu.registers.write(r, value)
}

// Read returns the word at addr, with the same device side effects as a load.
// A terminal failure while sampling KBSR is returned here and never reaches Run.
func (vm *VM) Read(addr Word) (Word, error) {
	w := vm.memory.read(addr)
	return w, vm.memory.takeErr()
}

// Write stores value at addr.
func (vm *VM) Write(addr, value Word) {
	vm.memory.write(addr, value)
}

// LoadImage copies a big-endian program image into memory. The first word
// of the image is the origin; the rest is placed from the origin upward.
func (vm *VM) LoadImage(r goIO.Reader) error {
	br := bufio.NewReader(r)

	origin, err := readWord(br)
	if err != nil {
		if errors.Is(err, goIO.EOF) || errors.Is(err, goIO.ErrUnexpectedEOF) {
			return ErrImageTooShort
		}
		return err
	}

	var words []Word
	for {
		w, err := readWord(br)
		if errors.Is(err, goIO.EOF) {
			break
		}
		if errors.Is(err, goIO.ErrUnexpectedEOF) {
			return ErrImageOddLength
		}
		if err != nil {
			return err
		}
		words = append(words, w)
	}

	if len(words) == 0 {
		return ErrImageTooShort
	}
	if int(origin)+len(words) > MemorySize {
		return ErrImageTooLarge
	}

	for i, w := range words {
		vm.memory.write(origin+Word(i), w)
	}

	vm.log.WithFields(logrus.Fields{
		"origin": fmt.Sprintf("0x%04x", uint16(origin)),
		"words":  len(words),
	}).Info("image loaded")

	return nil
}

func readWord(r goIO.Reader) (Word, error) {
	var buf [2]byte
	if _, err := goIO.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return Word(buf[0])<<8 | Word(buf[1]), nil
}
