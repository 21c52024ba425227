package travel

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdsa/internal/gps"
)

func TestOriginFirstValidWriteWins(t *testing.T) {
	tr := New()
	_, ok := tr.Origin()
	assert.False(t, ok)

	assert.False(t, tr.AddOrigin(unknown))
	_, ok = tr.Origin()
	assert.False(t, ok)

	assert.True(t, tr.AddOrigin(madrid))
	assert.False(t, tr.AddOrigin(nearby))
	got, ok := tr.Origin()
	require.True(t, ok)
	assert.Equal(t, madrid, got)

	_, ok = tr.Destination()
	assert.False(t, ok)
	assert.True(t, tr.AddDestination(nearby))
	assert.False(t, tr.AddDestination(madrid))
	got, ok = tr.Destination()
	require.True(t, ok)
	assert.Equal(t, nearby, got)
}

func TestAddSegmentKeepsDistanceSeparate(t *testing.T) {
	tr := New()
	s := NewSegment(madrid, nearby, 5)
	tr.AddSegment(s)
	assert.Len(t, tr.Segments(), 1)
	assert.Zero(t, tr.Distance(Meter))

	tr.AddDistance(1500)
	tr.AddDistance(500)
	assert.Equal(t, 2000.0, tr.Distance(Meter))
	assert.Equal(t, 2.0, tr.Distance(Kilometer))
}

func TestOverallStopAggregates(t *testing.T) {
	tr := New()
	tr.UpdateOverallStopCounter()
	tr.UpdateOverallStopTime(90)
	tr.UpdateOverallStopCounter()
	tr.UpdateOverallStopTime(30)

	assert.Equal(t, 2, tr.OverallStopCounter())
	assert.Equal(t, 120.0, tr.OverallStopTime(Second))
	assert.Equal(t, 2.0, tr.OverallStopTime(Minute))
}

func TestRecordRoundTrip(t *testing.T) {
	tr := New()
	tr.StartedAt = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	tr.FinishedAt = tr.StartedAt.Add(time.Hour)
	tr.AddOrigin(madrid)
	prev := madrid
	for i := 1; i <= 4; i++ {
		next := gps.Coordinate{Lat: madrid.Lat + float64(i)*0.0005, Lon: madrid.Lon}
		s := NewSegment(prev, next, 6)
		if i%2 == 0 {
			s.MarkAsStop("stop-1", 12)
		}
		tr.AddSegment(s)
		tr.AddDistance(s.Distance(Meter))
		prev = next
	}
	tr.UpdateOverallStopCounter()
	tr.UpdateOverallStopTime(12)
	tr.AddDestination(prev)

	raw, err := json.Marshal(tr)
	require.NoError(t, err)

	var decoded Travel
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, tr.ID, decoded.ID)
	assert.True(t, tr.StartedAt.Equal(decoded.StartedAt))
	assert.True(t, tr.FinishedAt.Equal(decoded.FinishedAt))
	origin, _ := decoded.Origin()
	assert.Equal(t, madrid, origin)
	dest, _ := decoded.Destination()
	assert.Equal(t, prev, dest)
	assert.Equal(t, tr.Distance(Meter), decoded.Distance(Meter))
	assert.Equal(t, 1, decoded.OverallStopCounter())
	assert.Equal(t, 12.0, decoded.OverallStopTime(Second))
	require.Len(t, decoded.Segments(), 4)
	for i, s := range tr.Segments() {
		assert.Equal(t, *s, *decoded.Segments()[i])
	}
}

func TestRecordOmitsUnsetEndpoints(t *testing.T) {
	rec := New().Record()
	assert.Nil(t, rec.Origin)
	assert.Nil(t, rec.Destination)

	tr, err := FromRecord(rec)
	require.NoError(t, err)
	_, ok := tr.Origin()
	assert.False(t, ok)
}

func TestDecodeVersionOne(t *testing.T) {
	raw := `{"version":1,"id":"old","origin":{"lat":40,"lon":-3},"segments":[{"start":{"lat":40,"lon":-3},"end":{"lat":40.001,"lon":-3},"time":5,"distance":111.2,"speed":22.24}],"distance":111.2}`
	var tr Travel
	require.NoError(t, json.Unmarshal([]byte(raw), &tr))
	require.Len(t, tr.Segments(), 1)
	assert.False(t, tr.Segments()[0].Stop())
	assert.Equal(t, 111.2, tr.Segments()[0].Distance(Meter))
	assert.Zero(t, tr.OverallStopCounter())
}

func TestDecodeUnknownVersion(t *testing.T) {
	var tr Travel
	err := json.Unmarshal([]byte(`{"version":99,"id":"future"}`), &tr)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}
