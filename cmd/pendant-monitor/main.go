// Command pendant-monitor decodes the pendant's telemetry from a serial
// port and logs it.
package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"
)

var (
	device  = "/dev/ttyACM0"
	baud    = 115200
	verbose = false
)

func init() {
	pflag.StringVarP(&device, "device", "d", device, "serial device of the pendant")
	pflag.IntVarP(&baud, "baud", "b", baud, "baud rate")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "log every frame")
}

func main() {
	pflag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("pendant-monitor failed")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return errors.Wrapf(err, "open %s", device)
	}
	defer port.Close()

	if err := port.SetReadTimeout(serial.NoTimeout); err != nil {
		return errors.Wrap(err, "reset read timeout")
	}
	log.Info().Str("device", device).Int("baud", baud).Msg("listening")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		log.Debug().Msg("closing serial port")
		if err := port.Close(); err != nil {
			return errors.Wrap(err, "close serial port")
		}
		return ctx.Err()
	})

	m := &monitor{log: log.Logger}
	g.Go(func() error {
		err := m.readLoop(ctx, bufio.NewReader(port))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	})

	err = g.Wait()
	m.summary()
	return err
}
