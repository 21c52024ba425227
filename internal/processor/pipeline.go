package processor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gdsa/internal/config"
	"gdsa/internal/detect"
	"gdsa/internal/filters"
	"gdsa/internal/ingest"
	"gdsa/internal/metrics"
	"gdsa/internal/recorder"
	"gdsa/internal/travel"
)

const (
	TravelSaved  = "saved"
	TravelFailed = "failed"
)

// TravelSaver stores finished travels in the master file.
type TravelSaver interface {
	SaveTravel(ctx context.Context, t *travel.Travel) error
}

// ReplayProcessor records a travel from a route file, the same way a live
// recording session would, and saves it.
type ReplayProcessor struct {
	Config  config.Config
	Saver   TravelSaver
	Sink    recorder.Sink
	Metrics *metrics.Metrics
	Log     *zap.Logger
	// Now supplies the start time of routes without timestamps.
	Now func() time.Time
}

// NewRecorder builds a recorder with the configured filter rules and stop
// detection settings.
func (p *ReplayProcessor) NewRecorder() (*recorder.Recorder, error) {
	chain, err := filters.DefaultRegistry().Build(p.Config.FilterRules, filters.Options{
		DiscardRadius: p.Config.DiscardRadiusM,
	})
	if err != nil {
		return nil, err
	}
	return &recorder.Recorder{
		Interval: p.Config.UpdateInterval,
		Filters:  chain,
		Detector: &detect.Detector{
			Stops: detect.NewStopDetector(p.Config.StopWindow, p.Config.StopMaxDistanceM),
		},
		Sink:    p.Sink,
		Metrics: p.Metrics,
		Log:     p.log(),
	}, nil
}

func (p *ReplayProcessor) Process(ctx context.Context, path string) (*travel.Travel, error) {
	t, err := p.process(ctx, path)
	if err != nil {
		p.countTravel(TravelFailed)
		return nil, err
	}
	p.countTravel(TravelSaved)
	if p.Metrics != nil {
		p.Metrics.StopTime.Add(t.OverallStopTime(travel.Second))
	}
	p.log().Info("replayed route",
		zap.String("path", path),
		zap.String("travel_id", t.ID),
		zap.Float64("distance_km", t.Distance(travel.Kilometer)),
		zap.Int("stops", t.OverallStopCounter()),
		zap.Float64("stop_minutes", t.OverallStopTime(travel.Minute)))
	return t, nil
}

func (p *ReplayProcessor) process(ctx context.Context, path string) (*travel.Travel, error) {
	fixes, err := ingest.ReadRouteFile(path, ingest.Options{
		Start: p.now(),
		Step:  p.Config.RouteStep,
	})
	if err != nil {
		return nil, err
	}
	rec, err := p.NewRecorder()
	if err != nil {
		return nil, err
	}
	t, err := rec.Replay(fixes)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Saver != nil {
		if err := p.Saver.SaveTravel(ctx, t); err != nil {
			return nil, fmt.Errorf("save travel %s: %w", t.ID, err)
		}
	}
	return t, nil
}

func (p *ReplayProcessor) countTravel(result string) {
	if p.Metrics != nil {
		p.Metrics.Travels.WithLabelValues(result).Inc()
	}
}

func (p *ReplayProcessor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}

func (p *ReplayProcessor) log() *zap.Logger {
	if p.Log != nil {
		return p.Log
	}
	return zap.NewNop()
}
