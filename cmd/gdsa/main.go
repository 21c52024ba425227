package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gdsa/internal/app"
	"gdsa/internal/config"
	"gdsa/internal/logger"
	"gdsa/internal/maps"
	"gdsa/internal/processor"
	"gdsa/internal/worker"
)

const usage = `usage: gdsa <command> [flags] [args]

commands:
  replay <route>...       record travels from route files and save them
  enqueue <route>...      queue route files for the worker
  work [-follow]          process queued routes
  list                    list saved travels
  show <travel-id>        print a travel and its segments
  export [-format f] <out> write the master file as json or geojson
  delete <travel-id>      remove a travel
`

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "gdsa: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, zap.String("app", cfg.AppName))
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			log.Error("close app", zap.Error(err))
		}
	}()

	switch cmd {
	case "replay":
		return replayCmd(ctx, a, args, out)
	case "enqueue":
		return enqueueCmd(ctx, a, args, out)
	case "work":
		return workCmd(ctx, a, args, out)
	case "list":
		return listCmd(ctx, a, out)
	case "show":
		return showCmd(a, args, out)
	case "export":
		return exportCmd(a, args, out)
	case "delete":
		return deleteCmd(ctx, a, args, out)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func newProcessor(a *app.App, sink *maps.Annotator) *processor.ReplayProcessor {
	p := &processor.ReplayProcessor{
		Config:  a.Config,
		Saver:   a,
		Metrics: a.Metrics,
		Log:     a.Log,
	}
	if sink != nil {
		p.Sink = sink
	}
	return p
}

func newWorker(a *app.App) *worker.Worker {
	return &worker.Worker{
		Store:     a.Store,
		Processor: newProcessor(a, nil),
		Metrics:   a.Metrics,
		Log:       a.Log,
	}
}

func runWorker(ctx context.Context, queueWorker *worker.Worker, idleDelay time.Duration, log *zap.Logger) {
	if idleDelay <= 0 {
		idleDelay = 2 * time.Second
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		processed, err := queueWorker.ProcessNext(ctx)
		if err != nil {
			log.Warn("worker error", zap.Error(err))
		}
		if !processed {
			select {
			case <-ctx.Done():
				return
			case <-time.After(idleDelay):
			}
		}
	}
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}
