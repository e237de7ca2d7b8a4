package models

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// queryCounter is a gorm logger that counts executed statements.
type queryCounter struct {
	n atomic.Int64
}

func (q *queryCounter) LogMode(logger.LogLevel) logger.Interface      { return q }
func (q *queryCounter) Info(context.Context, string, ...interface{})  {}
func (q *queryCounter) Warn(context.Context, string, ...interface{})  {}
func (q *queryCounter) Error(context.Context, string, ...interface{}) {}

func (q *queryCounter) Trace(_ context.Context, _ time.Time, _ func() (string, int64), _ error) {
	q.n.Add(1)
}

func (q *queryCounter) Reset()       { q.n.Store(0) }
func (q *queryCounter) Count() int64 { return q.n.Load() }

func newTestDB(t *testing.T) (*gorm.DB, *queryCounter) {
	t.Helper()

	counter := &queryCounter{}
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: counter})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&Category{}, &ServiceProvider{}))
	counter.Reset()
	return db, counter
}

func createCategory(t *testing.T, db *gorm.DB, name, slug string) Category {
	t.Helper()
	c := Category{Name: name, Slug: slug}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func createProviders(t *testing.T, db *gorm.DB, category Category, n int) []ServiceProvider {
	t.Helper()
	var existing int64
	require.NoError(t, db.Model(&ServiceProvider{}).Count(&existing).Error)

	providers := make([]ServiceProvider, n)
	for i := range providers {
		seq := int(existing) + i + 1
		providers[i] = ServiceProvider{
			Name:             fmt.Sprintf("Provider %d", seq),
			Slug:             fmt.Sprintf("provider-%d", seq),
			ShortDescription: "short",
			Description:      "long description",
			Logo:             fmt.Sprintf("/storage/logos/%d.png", seq),
			CategoryID:       category.ID,
		}
	}
	require.NoError(t, db.Create(&providers).Error)
	return providers
}
