package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/kanban/internal/config"
	"github.com/tgienger/kanban/internal/db"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/store/cache"
)

func TestOpenStore_Drivers(t *testing.T) {
	ctx := context.Background()

	mem, err := OpenStore(ctx, &config.Config{Store: config.StoreConfig{Driver: config.DriverMemory}})
	require.NoError(t, err)
	assert.IsType(t, &store.Memory{}, mem)

	path := filepath.Join(t.TempDir(), "kanban.db")
	sqlite, err := OpenStore(ctx, &config.Config{Store: config.StoreConfig{
		Driver: config.DriverSQLite,
		SQLite: config.SQLiteConfig{Path: path},
	}})
	require.NoError(t, err)
	assert.IsType(t, &db.DB{}, sqlite)
	require.NoError(t, sqlite.Close())

	_, err = OpenStore(ctx, &config.Config{Store: config.StoreConfig{Driver: "mongo"}})
	assert.Error(t, err)
}

func TestOpenStore_WrapsCache(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreConfig{Driver: config.DriverMemory},
		Cache: config.CacheConfig{URL: "redis://localhost:6379/0", TTL: 10},
	}

	client, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &cache.Cache{}, client)
	_ = client.Close()
}

func TestOpenStore_BadCacheURL(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreConfig{Driver: config.DriverMemory},
		Cache: config.CacheConfig{URL: "not a url"},
	}

	_, err := OpenStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestCacheNamespace(t *testing.T) {
	dir := t.TempDir()
	ns := func(cfg config.StoreConfig) string {
		t.Helper()
		got, err := cacheNamespace(cfg)
		require.NoError(t, err)
		return got
	}

	a := ns(config.StoreConfig{Driver: config.DriverSQLite, SQLite: config.SQLiteConfig{Path: filepath.Join(dir, "a.db")}})
	b := ns(config.StoreConfig{Driver: config.DriverSQLite, SQLite: config.SQLiteConfig{Path: filepath.Join(dir, "b.db")}})
	assert.NotEqual(t, a, b)
	assert.Equal(t, "sqlite:"+filepath.Join(dir, "a.db"), a)

	t.Setenv("XDG_DATA_HOME", dir)
	def := ns(config.StoreConfig{Driver: config.DriverSQLite})
	assert.Equal(t, "sqlite:"+filepath.Join(dir, "kanban", "kanban.db"), def)

	pgA := ns(config.StoreConfig{Driver: config.DriverPostgres, Postgres: config.PostgresConfig{DSN: "postgres://u:p@db1:5432/tasks"}})
	pgB := ns(config.StoreConfig{Driver: config.DriverPostgres, Postgres: config.PostgresConfig{DSN: "postgres://u:p@db2:5432/tasks"}})
	pgC := ns(config.StoreConfig{Driver: config.DriverPostgres, Postgres: config.PostgresConfig{DSN: "postgres://u:p@db1:5432/other"}})
	assert.Equal(t, "postgres:db1:5432/tasks", pgA)
	assert.NotEqual(t, pgA, pgB)
	assert.NotEqual(t, pgA, pgC)
	assert.NotContains(t, pgA, "p@")

	tblA := ns(config.StoreConfig{Driver: config.DriverTables, Tables: config.TablesConfig{ConnectionString: "AccountName=one;AccountKey=k1", Table: "tasks", Partition: "home"}})
	tblB := ns(config.StoreConfig{Driver: config.DriverTables, Tables: config.TablesConfig{ConnectionString: "AccountName=two;AccountKey=k2", Table: "tasks", Partition: "home"}})
	assert.NotEqual(t, tblA, tblB)
	assert.NotContains(t, tblA, "k1")

	assert.NotEqual(t, ns(config.StoreConfig{Driver: config.DriverMemory}), ns(config.StoreConfig{Driver: config.DriverMemory}))
}

func TestCacheKeepsSqliteBoardsApart(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	ctx := context.Background()
	dir := t.TempDir()

	open := func(name string) store.Client {
		t.Helper()
		cfg := &config.Config{
			Store: config.StoreConfig{Driver: config.DriverSQLite, SQLite: config.SQLiteConfig{Path: filepath.Join(dir, name)}},
			Cache: config.CacheConfig{URL: "redis://" + mr.Addr() + "/0", TTL: 60},
		}
		client, err := OpenStore(ctx, cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })
		return client
	}

	boardA := open("a.db")
	_, err = boardA.InsertTask(ctx, store.NewTask{Title: "only in A", Status: models.StatusTodo})
	require.NoError(t, err)
	listA, err := boardA.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, listA, 1)

	listB, err := open("b.db").ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, listB)
	assert.Len(t, mr.Keys(), 2)
}

func TestOpenSession_DriverOverrideIsValidated(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("KANBAN_STORE_POSTGRES_DSN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("KANBAN_CACHE_URL", "")
	t.Cleanup(func() {
		configPath = ""
		driverOverride = ""
	})
	configPath = dir
	ctx := context.Background()

	driverOverride = "MEMORY"
	s, err := openSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, s.cfg.Store.Driver)
	s.close()

	driverOverride = "postgres"
	_, err = openSession(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.postgres.dsn")
}

func TestPrintBoard(t *testing.T) {
	tasks := []models.Task{
		{ID: "a1", Title: "Buy milk", Status: models.StatusTodo, Position: 0},
		{ID: "b2", Title: "Write report", Status: models.StatusCompleted, Position: 1},
	}

	var out bytes.Buffer
	require.NoError(t, printBoard(&out, tasks))

	text := out.String()
	assert.Contains(t, text, "To Do (1)")
	assert.Contains(t, text, "In Progress (0)")
	assert.Contains(t, text, "Completed (1)")
	assert.Contains(t, text, "Buy milk")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("Buy milk")), bytes.Index(out.Bytes(), []byte("Write report")))
}
