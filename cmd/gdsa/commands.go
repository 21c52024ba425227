package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gdsa/internal/app"
	"gdsa/internal/jobs"
	"gdsa/internal/maps"
	"gdsa/internal/travel"
)

func replayCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	annotator := &maps.Annotator{}
	p := newProcessor(a, annotator)
	for _, path := range args {
		t, err := p.Process(ctx, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s  %s  %.2f km  %d stops  %.1f min stopped\n",
			t.ID, path, t.Distance(travel.Kilometer), t.OverallStopCounter(), t.OverallStopTime(travel.Minute))
		for _, m := range annotator.Markers(t.ID) {
			fmt.Fprintf(out, "  %-6s %.6f,%.6f  %s\n", m.Type, m.At.Lat, m.At.Lon, m.Duration)
		}
	}
	return nil
}

func enqueueCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	for _, path := range args {
		id, err := jobs.EnqueueRouteImport(ctx, a.Store, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "queued %s as %d\n", path, id)
	}
	return nil
}

func workCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("work", flag.ContinueOnError)
	follow := fs.Bool("follow", false, "keep polling the queue until interrupted")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	w := newWorker(a)
	if *follow {
		a.Log.Info("worker started", zap.Int("poll_interval_ms", a.Config.WorkerPollIntervalMS))
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			runWorker(gctx, w, time.Duration(a.Config.WorkerPollIntervalMS)*time.Millisecond, a.Log)
			return nil
		})
		if a.Config.MetricsTextfile != "" {
			g.Go(func() error {
				flushMetrics(gctx, a, metricsFlushInterval)
				return nil
			})
		}
		return g.Wait()
	}
	handled, err := w.Drain(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "processed %d queued routes\n", handled)
	return nil
}

const metricsFlushInterval = time.Minute

// flushMetrics rewrites the metrics textfile until ctx is done.
func flushMetrics(ctx context.Context, a *app.App, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.Metrics.WriteTextfile(a.Config.MetricsTextfile); err != nil {
				a.Log.Warn("write metrics textfile failed", zap.Error(err))
			}
		}
	}
}

func listCmd(ctx context.Context, a *app.App, out io.Writer) error {
	list, err := a.Store.ListTravelStats(ctx, a.Master.Key)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDISTANCE KM\tSEGMENTS\tSTOPS\tSTOPPED MIN\tAVG STOP S")
	for _, st := range list {
		started := "-"
		if !st.StartedAt.IsZero() {
			started = st.StartedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\t%d\t%.1f\t%.0f\n",
			st.TravelID, started, st.DistanceMeters/1000, st.SegmentCount,
			st.StopCount, st.StopTotalSeconds/60, st.AverageStopSeconds())
	}
	return tw.Flush()
}

func showCmd(a *app.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errUsage
	}
	t, ok := a.Master.Find(args[0])
	if !ok {
		return fmt.Errorf("travel %s not in %s", args[0], a.Master.Key)
	}
	fmt.Fprint(out, t.String())
	return nil
}

type masterExport struct {
	Key     string           `json:"key"`
	Version int              `json:"version"`
	Travels []*travel.Travel `json:"travels"`
}

func exportCmd(a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", "json", "json or geojson")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	travels := a.Master.Travels()
	var data []byte
	var err error
	switch *format {
	case "json":
		data, err = json.MarshalIndent(masterExport{
			Key:     a.Master.Key,
			Version: travel.RecordVersion,
			Travels: travels,
		}, "", "  ")
	case "geojson":
		fc := geojson.NewFeatureCollection()
		for _, t := range travels {
			features := maps.TravelFeatures(t, a.Config.DiscardRadiusM, maps.MarkersFromTravel(t))
			fc.Features = append(fc.Features, features.Features...)
		}
		data, err = json.MarshalIndent(fc, "", "  ")
	default:
		return fmt.Errorf("%w: unknown format %q", errUsage, *format)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(fs.Arg(0), data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "exported %d travels to %s\n", len(travels), fs.Arg(0))
	return nil
}

func deleteCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.DeleteTravel(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted %s\n", args[0])
	return nil
}
