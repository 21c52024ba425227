package ingest

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"gdsa/internal/gps"
	"gdsa/internal/recorder"
)

const DefaultStep = 6 * time.Second

var ErrMalformedLine = errors.New("malformed route line")

type Options struct {
	// Start is the time of the first fix when lines carry no timestamp.
	Start time.Time
	// Step separates synthesized timestamps.
	Step time.Duration
}

// ReadRoute parses a route file into fixes. Each line holds latitude and
// longitude and an optional unix timestamp in seconds, separated by tabs,
// commas or spaces. Blank lines and lines starting with # are skipped.
func ReadRoute(r io.Reader, opts Options) ([]recorder.Fix, error) {
	step := opts.Step
	if step <= 0 {
		step = DefaultStep
	}
	next := opts.Start
	if next.IsZero() {
		next = time.Unix(0, 0).UTC()
	}

	var fixes []recorder.Fix
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == '\t' || r == ',' || r == ' '
		})
		if len(fields) < 2 || len(fields) > 3 {
			return nil, errors.Wrapf(ErrMalformedLine, "line %d: %d fields", lineNo, len(fields))
		}
		lat, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedLine, "line %d: latitude %q", lineNo, fields[0])
		}
		lon, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedLine, "line %d: longitude %q", lineNo, fields[1])
		}
		if !finite(lat) || !finite(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return nil, errors.Wrapf(ErrMalformedLine, "line %d: coordinate out of range", lineNo)
		}

		at := next
		if len(fields) == 3 {
			unix, err := strconv.ParseFloat(fields[2], 64)
			if err != nil || !finite(unix) {
				return nil, errors.Wrapf(ErrMalformedLine, "line %d: timestamp %q", lineNo, fields[2])
			}
			at = time.Unix(0, int64(unix*float64(time.Second))).UTC()
		}
		if n := len(fixes); n > 0 && at.Before(fixes[n-1].Time) {
			return nil, errors.Wrapf(ErrMalformedLine, "line %d: timestamp goes backwards", lineNo)
		}
		fixes = append(fixes, recorder.Fix{
			Coordinate: gps.Coordinate{Lat: lat, Lon: lon},
			Time:       at,
		})
		next = at.Add(step)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read route")
	}
	return fixes, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func ReadRouteFile(path string, opts Options) ([]recorder.Fix, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open route")
	}
	defer file.Close()

	fixes, err := ReadRoute(file, opts)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return fixes, nil
}
