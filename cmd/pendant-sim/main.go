// Command pendant-sim runs the pendant engine on the host, on a memory port
// or on real GPIO, and can stream telemetry and a browser preview.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"periph.io/x/host/v3"

	"pendant-go/bus"
	"pendant-go/charlie"
	"pendant-go/internal/config"
	"pendant-go/internal/platform"
	"pendant-go/services/preview"
	"pendant-go/services/scan"
	"pendant-go/services/telemetry"
)

var (
	configPath = ""
	verbose    = false
	ticks      uint64
	program    uint8
	reset      = ""
	portKind   = ""
	addr       = ""
	telemPath  = ""
)

func init() {
	pflag.StringVarP(&configPath, "config", "c", configPath, "configuration file (.toml or .yaml)")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.Uint64Var(&ticks, "ticks", 0, "run this many ticks headless and exit")
	pflag.Uint8Var(&program, "program", 0, "program that ran before the simulated reset")
	pflag.StringVar(&reset, "reset", "", "simulated reset cause: power_on or external")
	pflag.StringVar(&portKind, "port", "", "pin port: mem or periph")
	pflag.StringVar(&addr, "addr", "", "preview listen address, e.g. :8080")
	pflag.StringVar(&telemPath, "telemetry", "", `telemetry output file, "-" for stdout`)
}

func main() {
	pflag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("pendant-sim failed")
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = *c
	}

	// Flags win when given explicitly.
	if pflag.CommandLine.Changed("program") {
		cfg.Program = program
	}
	if pflag.CommandLine.Changed("reset") {
		cfg.Reset = reset
	}
	if pflag.CommandLine.Changed("port") {
		cfg.Port.Kind = config.PortKind(portKind)
	}
	if pflag.CommandLine.Changed("addr") {
		cfg.Preview.Addr = addr
	}
	if pflag.CommandLine.Changed("telemetry") {
		cfg.Telemetry.Path = telemPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "flags")
	}
	return &cfg, nil
}

func openPort(cfg *config.Config) (charlie.Port, *platform.MemPort, error) {
	switch cfg.Port.Kind {
	case config.PeriphPort:
		if _, err := host.Init(); err != nil {
			return nil, nil, errors.Wrap(err, "periph host init")
		}
		var names [charlie.NumPins]string
		copy(names[:], cfg.Port.Pins)
		p, err := platform.OpenPeriphPort(names)
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil
	default:
		m := platform.NewMemPort(cfg.Port.LogWrites)
		return m, m, nil
	}
}

func openTelemetry(path string) (*telemetry.Service, func() error, error) {
	switch path {
	case "":
		return nil, func() error { return nil }, nil
	case "-":
		return telemetry.New(os.Stdout), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open telemetry output")
	}
	return telemetry.New(f), f.Close, nil
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	port, mem, err := openPort(cfg)
	if err != nil {
		return err
	}

	cause := cfg.ResetCause()
	prog := charlie.SelectProgram(cfg.Program, cause)
	eng := charlie.NewEngine(port, prog)

	svc := scan.New(eng, scan.Config{
		TickHz:   cfg.Scan.TickHz,
		Wake:     time.Duration(cfg.Scan.Wake),
		MaxBatch: cfg.Scan.MaxBatch,
		Reset:    cause,
	})
	log.Info().
		Str("port", string(cfg.Port.Kind)).
		Str("reset", cause.String()).
		Uint8("program", prog).
		Uint32("tick_hz", svc.Config().TickHz).
		Dur("wake", svc.Config().Wake).
		Int("max_batch", svc.Config().MaxBatch).
		Msg("engine ready")

	tel, closeTel, err := openTelemetry(cfg.Telemetry.Path)
	if err != nil {
		return err
	}
	defer closeTel()

	if ticks > 0 {
		err = runHeadless(svc, tel, ticks)
	} else {
		err = runLive(cfg, svc, tel)
	}
	summary(eng, svc, mem, tel)
	if p, ok := port.(*platform.PeriphPort); ok {
		if herr := p.Halt(); herr != nil {
			log.Warn().Err(herr).Msg("gpio errors")
		}
	}
	return err
}

// runHeadless runs n ticks as fast as possible. The bus queue holds every
// frame so telemetry sees all of them.
func runHeadless(svc *scan.Service, tel *telemetry.Service, n uint64) error {
	frames := n / charlie.AnimateEvery
	b := bus.NewBus(int(min(frames, 1<<16)) + 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	if tel != nil {
		go func() {
			tel.Run(ctx, b.NewConnection())
			close(done)
		}()
		<-tel.Ready()
	} else {
		close(done)
	}

	start := time.Now()
	svc.Attach(b.NewConnection())
	svc.RunTicks(n)
	log.Info().Uint64("ticks", n).Dur("took", time.Since(start)).Msg("headless run done")

	if tel != nil {
		want := uint32(frames) + 1
		deadline := time.Now().Add(2 * time.Second)
		for tel.Sent()+tel.Errors() < want && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
	}
	cancel()
	<-done
	svc.Attach(nil)
	return nil
}

func runLive(cfg *config.Config, svc *scan.Service, tel *telemetry.Service) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bus.NewBus(16)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		svc.Run(ctx, b.NewConnection())
		return nil
	})

	if tel != nil {
		g.Go(func() error {
			tel.Run(ctx, b.NewConnection())
			return nil
		})
	}

	if cfg.Preview.Addr != "" {
		pv := preview.NewServer()
		srv := &http.Server{
			Addr:         cfg.Preview.Addr,
			Handler:      pv.Handler(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		g.Go(func() error {
			pv.Run(ctx, b.NewConnection())
			return nil
		})
		g.Go(func() error {
			log.Info().Str("addr", cfg.Preview.Addr).Msg("preview server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return errors.Wrap(err, "preview server")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return srv.Close()
		})
	}

	g.Go(func() error {
		sub := b.NewConnection().Subscribe(scan.TopicState)
		for {
			select {
			case <-ctx.Done():
				return nil
			case m := <-sub.Channel():
				log.Debug().Interface("state", m.Payload).Msg("scan state")
			}
		}
	})

	log.Info().Msg("running, Ctrl-C to stop")
	return g.Wait()
}

func summary(eng *charlie.Engine, svc *scan.Service, mem *platform.MemPort, tel *telemetry.Service) {
	ev := log.Info().
		Uint64("ticks", eng.Ticks()).
		Uint32("frames", eng.Animations()).
		Uints8("levels", levelsSlice(eng.Levels())).
		Uint64("dropped", svc.Dropped())
	if mem != nil {
		lit := mem.LitCounts()
		ev = ev.
			Uint64("writes", mem.Writes()).
			Uint64("violations", mem.Violations()).
			Uints64("lit", lit[:])
	}
	if tel != nil {
		ev = ev.Uint32("telemetry_sent", tel.Sent()).Uint32("telemetry_errors", tel.Errors())
	}
	ev.Msg("summary")
}

func levelsSlice(l charlie.Levels) []uint8 { return l[:] }
