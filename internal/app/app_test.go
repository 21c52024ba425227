package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gdsa/internal/config"
	"gdsa/internal/gps"
	"gdsa/internal/travel"
)

func testConfig(t *testing.T, version string) config.Config {
	return config.Config{
		DatabasePath:   filepath.Join(t.TempDir(), "gdsa.db"),
		AppVersion:     version,
		AppBuild:       "3",
		MasterFileName: "MasterFile.dat",
	}
}

func newTravel(lat float64) *travel.Travel {
	tr := travel.New()
	tr.StartedAt = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	tr.AddOrigin(gps.Coordinate{Lat: lat, Lon: 2.35})
	return tr
}

func TestMasterFileOrdering(t *testing.T) {
	a, b, c := newTravel(48.1), newTravel(48.2), newTravel(48.3)
	m := NewMasterFile("k", []*travel.Travel{a})
	m.AddTravel(b)
	m.AddTravel(c)
	m.AddTravel(a)

	ids := func() []string {
		var out []string
		for _, tr := range m.Travels() {
			out = append(out, tr.ID)
		}
		return out
	}
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids())

	assert.True(t, m.RemoveTravel(b.ID))
	assert.False(t, m.RemoveTravel(b.ID))
	assert.Equal(t, []string{a.ID, c.ID}, ids())

	found, ok := m.Find(c.ID)
	require.True(t, ok)
	assert.Same(t, c, found)
	_, ok = m.Find(b.ID)
	assert.False(t, ok)
}

func TestAppPersistsMasterFilePerBuild(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "1.0")
	cfg.MetricsTextfile = filepath.Join(t.TempDir(), "gdsa.prom")

	first, err := Open(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "MasterFile.dat.1.0.3", first.Master.Key)
	assert.Zero(t, first.Master.Len())
	kept := newTravel(48.1)
	require.NoError(t, first.SaveTravel(ctx, kept))
	require.NoError(t, first.SaveTravel(ctx, newTravel(48.2)))
	require.NoError(t, first.Close(ctx))
	assert.FileExists(t, cfg.MetricsTextfile)

	second, err := Open(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Equal(t, 2, second.Master.Len())
	assert.Equal(t, kept.ID, second.Master.Travels()[0].ID)
	require.NoError(t, second.Close(ctx))

	upgraded := cfg
	upgraded.AppVersion = "1.1"
	third, err := Open(ctx, upgraded, nil)
	require.NoError(t, err)
	assert.Zero(t, third.Master.Len())
	require.NoError(t, third.Close(ctx))
}

func TestAppSaveAndDeleteTravel(t *testing.T) {
	ctx := context.Background()
	a, err := Open(ctx, testConfig(t, "1.0"), nil)
	require.NoError(t, err)
	defer a.Close(ctx)

	tr := newTravel(47.9)
	require.NoError(t, a.SaveTravel(ctx, tr))
	assert.Equal(t, 1, a.Master.Len())
	stored, err := a.Store.LoadTravel(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.ID, stored.ID)

	require.NoError(t, a.DeleteTravel(ctx, tr.ID))
	assert.Zero(t, a.Master.Len())
	assert.Error(t, a.DeleteTravel(ctx, tr.ID))
}

func TestAppCloseKeepsOtherProcessChanges(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "1.0")

	seeded, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	stale := newTravel(48.0)
	require.NoError(t, seeded.SaveTravel(ctx, stale))
	require.NoError(t, seeded.Close(ctx))

	follower, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	require.Equal(t, 1, follower.Master.Len())

	replayer, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	fresh := newTravel(48.5)
	require.NoError(t, replayer.SaveTravel(ctx, fresh))
	require.NoError(t, replayer.DeleteTravel(ctx, stale.ID))
	require.NoError(t, replayer.Close(ctx))

	require.NoError(t, follower.Close(ctx))

	reopened, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer reopened.Close(ctx)
	travels := reopened.Master.Travels()
	require.Len(t, travels, 1)
	assert.Equal(t, fresh.ID, travels[0].ID)
}
