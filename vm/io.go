package vm

import (
	goIO "io"
	"os"

	"github.com/pkg/term/termios"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal is the character device behind the keyboard registers and the traps.
type Terminal interface {
	// Pending reports whether a byte can be read without blocking. It never blocks.
	Pending() bool
	// ReadByte blocks until a byte is available.
	ReadByte() (byte, error)
	// Write must make p visible before returning.
	goIO.Writer
}

// Console is a Terminal over a file descriptor pair, usually stdin and stdout.
type Console struct {
	in                     *os.File
	out                    goIO.Writer
	originalTerminalConfig unix.Termios
	raw                    bool
	log                    logrus.FieldLogger
}

// NewConsole reads from in and writes unbuffered to out.
func NewConsole(in *os.File, out goIO.Writer) *Console {
	return &Console{
		in:  in,
		out: out,
		log: logrus.StandardLogger(),
	}
}

// SetLogger replaces the logger used for mode changes.
func (con *Console) SetLogger(log logrus.FieldLogger) {
	con.log = log
}

// IsTerminal reports whether the input is an interactive terminal.
func (con *Console) IsTerminal() bool {
	return term.IsTerminal(int(con.in.Fd()))
}

// EnableRawMode turns off line buffering and echo. It does nothing if the
// input is not a terminal.
func (con *Console) EnableRawMode() error {
	if con.raw || !con.IsTerminal() {
		return nil
	}
	con.log.Debug("enabling raw mode")

	if err := termios.Tcgetattr(con.in.Fd(), &con.originalTerminalConfig); err != nil {
		return &ErrTerminal{Op: "tcgetattr", Err: err}
	}
	newTermios := con.originalTerminalConfig
	newTermios.Lflag &^= unix.ICANON | unix.ECHO
	if err := termios.Tcsetattr(con.in.Fd(), termios.TCSANOW, &newTermios); err != nil {
		return &ErrTerminal{Op: "tcsetattr", Err: err}
	}
	con.raw = true
	return nil
}

// DisableRawMode restores the settings saved by EnableRawMode.
func (con *Console) DisableRawMode() error {
	if !con.raw {
		return nil
	}
	con.log.Debug("disabling raw mode")

	if err := termios.Tcsetattr(con.in.Fd(), termios.TCSANOW, &con.originalTerminalConfig); err != nil {
		return &ErrTerminal{Op: "tcsetattr", Err: err}
	}
	con.raw = false
	return nil
}

func (con *Console) Pending() bool {
	fds := []unix.PollFd{{Fd: int32(con.in.Fd()), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, 0)
		if err == unix.EINTR {
			continue
		}
		// A hung up or closed input is reported as pending so the following
		// read surfaces the failure.
		return err == nil && n > 0 && fds[0].Revents != 0
	}
}

func (con *Console) ReadByte() (byte, error) {
	var buf [1]byte
	for {
		n, err := con.in.Read(buf[:])
		if n == 1 {
			return buf[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

func (con *Console) Write(p []byte) (int, error) {
	return con.out.Write(p)
}
