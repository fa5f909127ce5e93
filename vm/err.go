package vm

import (
	"errors"

	"github.com/aryanA101a/lulu/translate"
)

var f = translate.From

var (
	// Execution errors
	ErrMalformedInstruction = errors.New(f("malformed instruction"))
	ErrUnimplementedOpcode  = errors.New(f("unimplemented opcode"))
	ErrIoFailure            = errors.New(f("terminal i/o failure"))
	ErrInvalidRegister      = errors.New(f("invalid register"))

	// Image loading errors
	ErrImageTooShort  = errors.New(f("image too short"))
	ErrImageOddLength = errors.New(f("image has an odd number of bytes"))
	ErrImageTooLarge  = errors.New(f("image does not fit in memory"))
)

// ErrRuntime locates a fatal condition raised while executing an instruction.
type ErrRuntime struct {
	PC          Word // address the instruction was fetched from
	Instruction Word
	Err         error
}

func (err *ErrRuntime) Error() string {
	return f("0x%04x (0x%04x) %v", uint16(err.PC), uint16(err.Instruction), err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrOpcode reports an opcode that has no architectural meaning.
type ErrOpcode Opcode

func (eo ErrOpcode) Error() string {
	return f("%v %v", ErrUnimplementedOpcode, Opcode(eo))
}

func (eo ErrOpcode) Is(err error) bool {
	return err == ErrUnimplementedOpcode
}

// ErrTerminal wraps a failure of the terminal capability.
type ErrTerminal struct {
	Op  string
	Err error
}

func (err *ErrTerminal) Error() string {
	return f("%v: %v: %v", ErrIoFailure, err.Op, err.Err)
}

func (err *ErrTerminal) Unwrap() []error {
	return []error{ErrIoFailure, err.Err}
}
