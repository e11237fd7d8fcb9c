package testdb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/factory/internal/config"
	"github.com/forgo/factory/internal/testing/testdb"
	"github.com/forgo/factory/pkg/store"
	"github.com/forgo/factory/pkg/store/memory"
	"github.com/forgo/factory/pkg/store/sqlite"
)

type item struct {
	ID   string
	Name string
}

func testConfig(driver string) *config.Config {
	cfg := &config.Config{}
	cfg.Store.Driver = driver
	cfg.Log.Level = "error"
	cfg.Log.Format = "text"
	return cfg
}

func TestNewWithConfig_Drivers(t *testing.T) {
	tests := []struct {
		driver string
		check  func(t *testing.T, s testdb.Store)
	}{
		{config.DriverMemory, func(t *testing.T, s testdb.Store) {
			_, ok := s.(*memory.Store)
			assert.True(t, ok, "got %T", s)
		}},
		{config.DriverSQLite, func(t *testing.T, s testdb.Store) {
			_, ok := s.(*sqlite.Store)
			assert.True(t, ok, "got %T", s)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			types := store.NewTypes().MustRegister("item", item{})
			tdb := testdb.NewWithConfig(t, testConfig(tt.driver), types)
			defer tdb.Close()

			tt.check(t, tdb.Store)
			assert.Equal(t, tt.driver, tdb.Driver)

			_, err := tdb.Store.Persist(tdb.Ctx(), &item{Name: "one"})
			require.NoError(t, err)
			assert.Equal(t, 1, tdb.MustCount("item"))

			tdb.Reset(t)
			assert.Equal(t, 0, tdb.MustCount("item"))
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := testdb.Open(context.Background(), testConfig("cassandra"), nil, nil)
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	tdb := testdb.NewWithConfig(t, testConfig(config.DriverMemory), nil)
	tdb.Close()
	tdb.Close()
	assert.Nil(t, tdb.Store)
}
