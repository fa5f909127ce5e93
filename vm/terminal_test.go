package vm

import (
	"bytes"
	"errors"
	goIO "io"
)

// fakeTerminal serves input from a byte slice and collects output.
type fakeTerminal struct {
	input    []byte
	output   bytes.Buffer
	polls    int
	readErr  error
	writeErr error
}

func (ft *fakeTerminal) Pending() bool {
	ft.polls++
	return len(ft.input) > 0 || ft.readErr != nil
}

func (ft *fakeTerminal) ReadByte() (byte, error) {
	if ft.readErr != nil {
		return 0, ft.readErr
	}
	if len(ft.input) == 0 {
		return 0, goIO.EOF
	}
	c := ft.input[0]
	ft.input = ft.input[1:]
	return c, nil
}

func (ft *fakeTerminal) Write(p []byte) (int, error) {
	if ft.writeErr != nil {
		return 0, ft.writeErr
	}
	return ft.output.Write(p)
}

var errBroken = errors.New("broken terminal")
