package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/aryanA101a/lulu/vm"
)

func main() {
	var cli struct {
		Run runCmd `cmd:"" default:"withargs" help:"Run LC-3 program images."`
	}

	ctx := kong.Parse(&cli,
		kong.Name("lulu"),
		kong.Description("A virtual machine for the LC-3 architecture."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

type runCmd struct {
	Images  []string `arg:"" name:"image" type:"existingfile" help:"Program images, loaded in order."`
	Verbose bool     `short:"v" env:"LULU_VERBOSE" help:"Log lifecycle events at debug level."`
	LogFile string   `name:"log-file" type:"path" env:"LULU_LOG_FILE" help:"Write logs to this file instead of stderr."`
	Raw     bool     `default:"true" negatable:"" help:"Disable line buffering and echo while running."`
}

func (r *runCmd) Run() error {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if r.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if r.LogFile != "" {
		f, err := os.OpenFile(r.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		defer f.Close()
		log.SetOutput(f)
	}

	console := vm.NewConsole(os.Stdin, os.Stdout)
	console.SetLogger(log)
	machine := vm.NewVM(console, vm.WithLogger(log))

	for _, image := range r.Images {
		if err := loadImage(machine, image); err != nil {
			return fmt.Errorf("%v: %w", image, err)
		}
	}

	if r.Raw {
		if err := console.EnableRawMode(); err != nil {
			return err
		}
	}
	defer console.DisableRawMode()

	interrupt := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)
	go func() {
		select {
		case <-interrupt:
			log.Debug("interrupted")
			console.DisableRawMode()
			os.Stdout.Write([]byte("\n"))
			os.Exit(130)
		case <-done:
		}
	}()
	defer close(done)

	return machine.Run()
}

func loadImage(machine *vm.VM, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	return machine.LoadImage(f)
}
