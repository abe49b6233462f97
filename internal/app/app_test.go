package app

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimelens/crime-analytics/internal/analytics"
	"github.com/crimelens/crime-analytics/internal/cache"
	"github.com/crimelens/crime-analytics/internal/chat"
	"github.com/crimelens/crime-analytics/internal/config"
	"github.com/crimelens/crime-analytics/internal/dataset"
	"github.com/crimelens/crime-analytics/internal/storage"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Data.Dir = "../dataset/testdata"
	cfg.Database.SQLite.Path = ":memory:"
	cfg.Database.SQLite.MaxOpenConns = 1
	return cfg
}

func TestNew(t *testing.T) {
	var files atomic.Int32
	a, err := New(context.Background(), testConfig(), nil, Options{
		Feedback: true,
		OnFile:   func() { files.Add(1) },
	})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, int32(9), files.Load())
	assert.Equal(t, []string{"2019", "2020"}, a.Provider.Years(dataset.City))
	assert.IsType(t, &cache.MemoryClient{}, a.Cache)

	ans := a.Engine.Ask(context.Background(), chat.Request{Message: "highest arrests 2020"})
	assert.Equal(t, "highest", ans.Envelope.Type)
	assert.Equal(t, analytics.Ranking{{Label: "Delhi", Value: 22000}}, ans.Envelope.Data)

	require.NotNil(t, a.Feedback)
	fb := &storage.Feedback{Name: "Asha", Message: "Useful charts"}
	require.NoError(t, a.Feedback.Create(context.Background(), fb))
	list, err := a.Feedback.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestNew_WithoutFeedback(t *testing.T) {
	a, err := New(context.Background(), testConfig(), nil, Options{})
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.DB)
	assert.Nil(t, a.Feedback)
}

func TestNew_RedisMemory(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Cache.Driver = "redis"
	cfg.Cache.Redis.Addr = mr.Addr()

	a, err := New(context.Background(), cfg, nil, Options{})
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	a.Engine.Ask(ctx, chat.Request{Message: "delhi 2020", SessionID: "s1"})
	assert.True(t, mr.Exists("crime:session:s1"))

	ans := a.Engine.Ask(ctx, chat.Request{Message: "tell me more", SessionID: "s1"})
	assert.Equal(t, chat.IntentCityProfile, ans.Resolution.Intent)
	assert.Equal(t, []string{"Delhi"}, ans.Resolution.Slots.Cities)
}

func TestNew_Errors(t *testing.T) {
	t.Run("unreachable redis", func(t *testing.T) {
		cfg := testConfig()
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = "127.0.0.1:1"

		_, err := New(context.Background(), cfg, nil, Options{})
		assert.ErrorContains(t, err, "connect redis")
	})

	t.Run("unsupported database", func(t *testing.T) {
		cfg := testConfig()
		cfg.Database.Driver = "mysql"
		_, err := New(context.Background(), cfg, nil, Options{Feedback: true})
		assert.ErrorContains(t, err, "open feedback database")
	})
}

func TestNew_EmptyDataDir(t *testing.T) {
	cfg := testConfig()
	cfg.Data.Dir = t.TempDir()

	a, err := New(context.Background(), cfg, nil, Options{})
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, a.Provider.Loaded())
	ans := a.Engine.Ask(context.Background(), chat.Request{Message: "highest arrests"})
	assert.Equal(t, chat.MsgSpecifyYear, ans.Envelope.Summary)
}

func TestStorageConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	sc := StorageConfig(cfg)
	assert.Equal(t, storage.DriverSQLite, sc.Driver)
	assert.Equal(t, "feedback.db", sc.DSN)

	cfg.Database.Driver = "postgres"
	cfg.Database.Postgres.DSN = "postgres://localhost/crime"
	sc = StorageConfig(cfg)
	assert.Equal(t, storage.DriverPostgres, sc.Driver)
	assert.Equal(t, "postgres://localhost/crime", sc.DSN)
	assert.Equal(t, 10, sc.MaxOpenConns)
}
